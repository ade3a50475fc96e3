package scenario

import (
	"context"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyorama2/memberload/internal/credentials"
	"github.com/wesleyorama2/memberload/internal/events"
	mhttp "github.com/wesleyorama2/memberload/internal/http"
	"github.com/wesleyorama2/memberload/internal/portalstub"
	"github.com/wesleyorama2/memberload/internal/timing"
)

type fixture struct {
	stub     *portalstub.Server
	server   *httptest.Server
	recorder *events.Recorder
	session  *Session
	credPath string
}

func writeCredentials(t *testing.T, path, uid, pwd string) {
	t.Helper()
	doc := `{"mp_login": {"uid": "` + uid + `"}, "win_login": {"pwd": "` + pwd + `"}}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	stub := portalstub.New()
	server := httptest.NewServer(stub)
	t.Cleanup(server.Close)

	credPath := filepath.Join(t.TempDir(), "data.json")
	writeCredentials(t, credPath, "qa.member01", "S3cret!")

	bus := events.NewBus()
	rec := &events.Recorder{}
	rec.Attach(bus)

	client := mhttp.NewClient(mhttp.WithBaseURL(server.URL))
	session := NewSession(client, credentials.NewFileSource(credPath), timing.NewTimer(bus))

	return &fixture{
		stub:     stub,
		server:   server,
		recorder: rec,
		session:  session,
		credPath: credPath,
	}
}

func uris(reqs []portalstub.Request) []string {
	out := make([]string, len(reqs))
	for i, r := range reqs {
		out[i] = r.URI
	}
	return out
}

func stepPaths(a Action) []string {
	out := make([]string, len(a.Steps))
	for i, s := range a.Steps {
		out[i] = s.Path
	}
	return out
}

func mustLookup(t *testing.T, name string) Action {
	t.Helper()
	a, ok := Lookup(Actions(), name)
	require.True(t, ok, "action %s not found", name)
	return a
}

func TestSession_OnStartPostsLogin(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, PhaseIdle, f.session.Phase())

	res := f.session.OnStart(context.Background())

	require.True(t, res.OK, "login failed: %v", res.Err)
	assert.Equal(t, PhaseSteady, f.session.Phase())

	reqs := f.stub.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, LoginPath, reqs[0].URI)
	assert.Equal(t, "qa.member01", reqs[0].Form.Get(credentials.UsernameField))
	assert.Equal(t, "S3cret!", reqs[0].Form.Get(credentials.PasswordField))
	assert.Equal(t, 1, f.stub.ActiveLogins())

	require.Len(t, f.recorder.Successes(), 1)
	ev := f.recorder.Successes()[0]
	assert.Equal(t, LoginName, ev.Name)
	assert.Equal(t, timing.RequestTypeCustom, ev.RequestType)
	assert.Equal(t, "OnStart", ev.Tag)
}

func TestSession_OnStopRereadsCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.session.OnStart(ctx)
	writeCredentials(t, f.credPath, "qa.member02", "rotated")
	res := f.session.OnStop(ctx)

	require.True(t, res.OK)
	assert.Equal(t, PhaseStopped, f.session.Phase())

	reqs := f.stub.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, LogoutPath, reqs[1].URI)
	assert.Equal(t, http.MethodPost, reqs[1].Method)
	assert.Equal(t, "qa.member02", reqs[1].Form.Get(credentials.UsernameField))
	assert.Equal(t, "rotated", reqs[1].Form.Get(credentials.PasswordField))
	assert.Zero(t, f.stub.ActiveLogins())

	successes := f.recorder.Successes()
	require.Len(t, successes, 2)
	assert.Equal(t, LogoutName, successes[1].Name)
	assert.Equal(t, "OnStop", successes[1].Tag)
}

func TestSession_MissingCredentialsReportedAsFailure(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.Remove(f.credPath))

	res := f.session.OnStart(context.Background())

	assert.False(t, res.OK)
	assert.ErrorIs(t, res.Err, os.ErrNotExist)
	assert.Empty(t, f.stub.Requests())
	require.Len(t, f.recorder.Failures(), 1)
	assert.Equal(t, LoginName, f.recorder.Failures()[0].Name)
	assert.Equal(t, PhaseSteady, f.session.Phase())
}

func TestSession_ComplaintFlowOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	action := mustLookup(t, "complaints_process")

	expected := []string{
		"/App/Complaint/complaintInbox.html?v=2019.6.4.1",
		"/App/Complaint/Wizard/complainantContactInfo.html?v=2019.6.4.1",
		"/App/Complaint/Wizard/allegations.html?v=2019.6.4.1",
		"/App/Complaint/Wizard/complaintReview.html?v=2019.6.4.1",
		"/App/Complaint/Parts/complaintView.directive.html?v=2019.6.4.1",
		"/App/Complaint/Parts/createEditIssue.directive.html?v=2019.6.4.1",
		"/App/Complaint/Parts/issueView.directive.html?v=2019.6.4.1",
	}
	assert.Equal(t, expected, stepPaths(action))

	for i := 0; i < 3; i++ {
		f.stub.Reset()
		res := f.session.Execute(ctx, action)
		require.True(t, res.OK)

		reqs := f.stub.Requests()
		assert.Equal(t, expected, uris(reqs))
		for _, r := range reqs {
			assert.Equal(t, http.MethodGet, r.Method)
		}
	}

	successes := f.recorder.Successes()
	require.Len(t, successes, 3)
	for _, ev := range successes {
		assert.Equal(t, "complaints_process", ev.Name)
		assert.Equal(t, "Execute", ev.Tag)
		assert.GreaterOrEqual(t, ev.ResponseTime, int64(0))
	}
}

func TestSession_EnrollmentFlowOrder(t *testing.T) {
	f := newFixture(t)
	action := mustLookup(t, "enrollment_process")
	const directive = "/app/script/ahsScript.directive.html?v=2019.6.4.1"

	res := f.session.Execute(context.Background(), action)
	require.True(t, res.OK)

	got := uris(f.stub.Requests())
	assert.Equal(t, stepPaths(action), got)
	require.Len(t, got, 17)

	var positions []int
	for i, u := range got {
		if u == directive {
			positions = append(positions, i)
		}
	}
	assert.Equal(t, []int{3, 16}, positions)
	assert.Equal(t, "/App/SMMCEnrollmentWizard/Wizard/Shared/selectMember.html?v=2019.6.4.1", got[0])
	for _, u := range got {
		assert.NotContains(t, u, "selectCMS")
	}
}

func TestSession_ExecuteFailureIsReportedNotRaised(t *testing.T) {
	f := newFixture(t)
	f.server.Close()

	res := f.session.Execute(context.Background(), mustLookup(t, "complaints_process"))

	assert.False(t, res.OK)
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "complaintInbox.html")

	require.Len(t, f.recorder.Failures(), 1)
	assert.Empty(t, f.recorder.Successes())
	ev := f.recorder.Failures()[0]
	assert.Equal(t, "complaints_process", ev.Name)
	assert.Equal(t, res.Err, ev.Err)
}

func TestSession_ErrorStatusStillSucceeds(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	bus := events.NewBus()
	rec := &events.Recorder{}
	rec.Attach(bus)
	session := NewSession(
		mhttp.NewClient(mhttp.WithBaseURL(server.URL)),
		credentials.StaticSource{Username: "u", Password: "p"},
		timing.NewTimer(bus),
	)

	res := session.Execute(context.Background(), mustLookup(t, "index"))

	assert.True(t, res.OK)
	assert.Len(t, rec.Successes(), 1)
}

func TestSession_Tasks(t *testing.T) {
	f := newFixture(t)
	tasks := f.session.Tasks()
	require.Len(t, tasks, len(Actions()))

	for i, a := range Actions() {
		assert.Equal(t, a.Name, tasks[i].Name)
		assert.Equal(t, a.Weight, tasks[i].Weight)
	}

	res := tasks[0].Fn(context.Background())
	require.True(t, res.OK)
	assert.Equal(t, []string{"/Account/Register"}, uris(f.stub.Requests()))
}

func TestSession_Options(t *testing.T) {
	bus := events.NewBus()
	custom := []Action{{Name: "only", Weight: 1}}

	s := NewSession(mhttp.NewClient(), credentials.StaticSource{}, timing.NewTimer(bus),
		WithID("vu-7"), WithActions(custom), WithLogger(nil))

	assert.Equal(t, "vu-7", s.ID)
	assert.Equal(t, custom, s.Actions())

	other := NewSession(mhttp.NewClient(), credentials.StaticSource{}, timing.NewTimer(bus))
	assert.NotEmpty(t, other.ID)
	assert.NotEqual(t, s.ID, other.ID)
}

func TestDrive(t *testing.T) {
	f := newFixture(t)
	picker, err := NewPicker(Actions(), rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	err = Drive(context.Background(), f.session, picker, DriveOptions{Iterations: 5})
	require.NoError(t, err)

	reqs := f.stub.Requests()
	require.GreaterOrEqual(t, len(reqs), 7)
	assert.Equal(t, LoginPath, reqs[0].URI)
	assert.Equal(t, LogoutPath, reqs[len(reqs)-1].URI)

	successes := f.recorder.Successes()
	require.Len(t, successes, 7)
	assert.Equal(t, LoginName, successes[0].Name)
	assert.Equal(t, LogoutName, successes[6].Name)
	assert.Zero(t, f.stub.ActiveLogins())
}

func TestDrive_CancelledDuringWaitStillLogsOut(t *testing.T) {
	f := newFixture(t)
	picker, err := NewPicker(Actions(), rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err = Drive(ctx, f.session, picker, DriveOptions{
		Iterations: 3,
		Wait: func() time.Duration {
			cancel()
			return time.Hour
		},
	})

	assert.ErrorIs(t, err, context.Canceled)
	got := uris(f.stub.Requests())
	assert.Equal(t, []string{LoginPath, LogoutPath}, got)
	assert.Equal(t, PhaseStopped, f.session.Phase())
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "idle", PhaseIdle.String())
	assert.Equal(t, "starting", PhaseStarting.String())
	assert.Equal(t, "steady", PhaseSteady.String())
	assert.Equal(t, "stopped", PhaseStopped.String())
	assert.Equal(t, "unknown", Phase(42).String())
}

func TestActions_VersionedPaths(t *testing.T) {
	for _, a := range Actions() {
		for _, s := range a.Steps {
			assert.Equal(t, http.MethodGet, s.Method)
			if a.Name != "register" {
				assert.True(t, strings.HasSuffix(s.Path, "?v="+AssetVersion), s.Path)
			}
		}
	}
}
