package credentials

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"
)

// Defaults for FileSource.
const (
	DefaultPath         = "data.json"
	DefaultUsernamePath = "mp_login.uid"
	DefaultPasswordPath = "win_login.pwd"
)

// FileSource reads credentials from a JSON document on every Load call, so
// the file can be rotated while a run is in progress.
//
// UsernamePath and PasswordPath are dot separated paths into the document.
type FileSource struct {
	Path         string
	UsernamePath string
	PasswordPath string

	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
}

// NewFileSource creates a FileSource for path using the default field paths.
func NewFileSource(path string) *FileSource {
	return &FileSource{
		Path:         path,
		UsernamePath: DefaultUsernamePath,
		PasswordPath: DefaultPasswordPath,
	}
}

// Load reads and validates the document, then extracts the two fields.
func (s *FileSource) Load() (Credentials, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to read credentials file: %w", err)
	}
	return s.Parse(data)
}

// Parse validates data and extracts the credentials from it.
func (s *FileSource) Parse(data []byte) (Credentials, error) {
	schema, err := s.compiledSchema()
	if err != nil {
		return Credentials{}, err
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return Credentials{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := schema.Validate(doc); err != nil {
		return Credentials{}, fmt.Errorf("%w: %s", ErrInvalidDocument, describe(err))
	}

	username := gjson.GetBytes(data, s.usernamePath())
	password := gjson.GetBytes(data, s.passwordPath())
	if !username.Exists() || !password.Exists() {
		return Credentials{}, fmt.Errorf("%w: missing credential fields", ErrInvalidDocument)
	}

	return Credentials{
		Username: username.String(),
		Password: password.String(),
	}, nil
}

func (s *FileSource) path() string {
	if s.Path == "" {
		return DefaultPath
	}
	return s.Path
}

func (s *FileSource) usernamePath() string {
	if s.UsernamePath == "" {
		return DefaultUsernamePath
	}
	return s.UsernamePath
}

func (s *FileSource) passwordPath() string {
	if s.PasswordPath == "" {
		return DefaultPasswordPath
	}
	return s.PasswordPath
}

func (s *FileSource) compiledSchema() (*jsonschema.Schema, error) {
	s.schemaOnce.Do(func() {
		s.schema, s.schemaErr = compileSchema(s.usernamePath(), s.passwordPath())
	})
	return s.schema, s.schemaErr
}

// compileSchema builds a JSON schema requiring a string at each path.
func compileSchema(paths ...string) (*jsonschema.Schema, error) {
	root := objectSchema()
	for _, p := range paths {
		node := root
		segments := strings.Split(p, ".")
		for i, seg := range segments {
			if seg == "" {
				return nil, fmt.Errorf("credentials: invalid field path %q", p)
			}
			props := node["properties"].(map[string]interface{})
			node["required"] = appendUnique(node["required"].([]string), seg)

			if i == len(segments)-1 {
				props[seg] = map[string]interface{}{"type": "string"}
				break
			}
			child, ok := props[seg].(map[string]interface{})
			if !ok || child["type"] != "object" {
				child = objectSchema()
				props[seg] = child
			}
			node = child
		}
	}

	raw, err := json.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("credentials: failed to encode schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("credentials.schema.json", strings.NewReader(string(raw))); err != nil {
		return nil, fmt.Errorf("credentials: invalid schema: %w", err)
	}
	return compiler.Compile("credentials.schema.json")
}

func objectSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"required":   []string{},
		"properties": map[string]interface{}{},
	}
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}

// describe flattens a schema validation error into one line.
func describe(err error) string {
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err.Error()
	}

	var msgs []string
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			msgs = append(msgs, fmt.Sprintf("%s: %s", loc, e.Message))
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(verr)

	if len(msgs) == 0 {
		return verr.Error()
	}
	return strings.Join(msgs, "; ")
}
