package scenario

import "net/http"

// AssetVersion is the cache-busting version the portal appends to its
// static pages.
const AssetVersion = "2019.6.4.1"

// Account endpoints used by the session lifecycle.
const (
	LoginPath  = "/Account/Login"
	LogoutPath = "/Account/Logout"
)

// Step is one HTTP call of an action.
type Step struct {
	Method string
	Path   string
}

// Action is a named, weighted unit of simulated user behavior. Steps run
// sequentially in the listed order.
type Action struct {
	Name   string
	Weight int
	Steps  []Step

	// Note is logged after the action completes
	Note string
}

func get(path string) Step {
	return Step{Method: http.MethodGet, Path: path}
}

// versioned appends the asset version query to a static page path.
func versioned(path string) Step {
	return get(path + "?v=" + AssetVersion)
}

// Actions returns the steady-state action catalog in declaration order.
// Every call returns a fresh copy.
func Actions() []Action {
	return []Action{
		// Account registration
		{
			Name:   "register",
			Weight: 2,
			Steps:  []Step{get("/Account/Register")},
		},

		// Account management options
		{
			Name:   "my_account",
			Weight: 1,
			Steps:  []Step{versioned("/App/AccountManage/myAccount.html")},
		},
		{
			Name:   "change_password",
			Weight: 1,
			Steps:  []Step{versioned("/app/accountmanage/changepassword.html")},
		},

		// Site pages
		{
			Name:   "index",
			Weight: 4,
			Steps:  []Step{versioned("/app/home/home.html")},
			Note:   "home",
		},
		{
			Name:   "add_member",
			Weight: 4,
			Steps:  []Step{versioned("/app/members/addMember.html")},
			Note:   "add member",
		},
		{
			Name:   "view_members",
			Weight: 2,
			Steps:  []Step{versioned("/App/Members/members.html")},
		},
		{
			Name:   "complaints_process",
			Weight: 2,
			Steps: []Step{
				versioned("/App/Complaint/complaintInbox.html"),
				versioned("/App/Complaint/Wizard/complainantContactInfo.html"),
				versioned("/App/Complaint/Wizard/allegations.html"),
				versioned("/App/Complaint/Wizard/complaintReview.html"),
				versioned("/App/Complaint/Parts/complaintView.directive.html"),
				versioned("/App/Complaint/Parts/createEditIssue.directive.html"),
				versioned("/App/Complaint/Parts/issueView.directive.html"),
			},
			Note: "complaints process",
		},
		{
			Name:   "enrollment_process",
			Weight: 4,
			Steps: []Step{
				versioned("/App/SMMCEnrollmentWizard/Wizard/Shared/selectMember.html"),
				versioned("/App/SMMCEnrollmentWizard/Directives/Shared/selectMemberCard.directive.html"),
				versioned("/App/SMMCEnrollmentWizard/Directives/Shared/selectMemberCardPanel.directive.html"),
				versioned("/app/script/ahsScript.directive.html"),
				versioned("/App/Layout/personWizardPanel.directive.html"),
				versioned("/App/Layout/wizardAccordian.directive.html"),
				versioned("/App/SMMCEnrollmentWizard/Wizard/Shared/selectHealthPlanChangeReason.html"),
				versioned("/App/SMMCEnrollmentWizard/Wizard/Dental/selectDentalPlanChangeReason.html"),
				versioned("/App/SMMCEnrollmentWizard/Directives/Shared/selectSpecialNeedList.directive.html"),
				// selectCMS.directive.html is not requested
				versioned("/App/SMMCEnrollmentWizard/Wizard/Shared/selectHealthPlan.html"),
				versioned("/App/SMMCEnrollmentWizard/Wizard/Dental/selectDentalPlan.html"),
				versioned("/App/SMMCChoiceTools/sMMCAvailableHealthPlanGrid.directive.html"),
				versioned("/App/SMMCEnrollmentWizard/Directives/Shared/selectSubmitReviewHealthPlanPanel.html"),
				versioned("/App/SMMCEnrollmentWizard/Directives/Dental/selectSubmitReviewDentalPlanPanel.html"),
				versioned("/app/script/ahsScriptQuestionControl.directive.html"),
				versioned("/app/script/ahsScriptSummary.directive.html"),
				versioned("/app/script/ahsScript.directive.html"),
			},
			Note: "enrollment process",
		},
		{
			Name:   "mail_history",
			Weight: 1,
			Steps:  []Step{versioned("/App/Mail/mailHistory.html")},
		},
	}
}

// Lookup returns the action with the given name from actions.
func Lookup(actions []Action, name string) (Action, bool) {
	for _, a := range actions {
		if a.Name == name {
			return a, true
		}
	}
	return Action{}, false
}

// WithWeights returns a copy of actions with weights replaced by the
// matching entries of overrides. Unknown names are ignored.
func WithWeights(actions []Action, overrides map[string]int) []Action {
	out := make([]Action, len(actions))
	copy(out, actions)
	for i := range out {
		if w, ok := overrides[out[i].Name]; ok {
			out[i].Weight = w
		}
	}
	return out
}

// TotalWeight sums the weights of actions.
func TotalWeight(actions []Action) int {
	total := 0
	for _, a := range actions {
		if a.Weight > 0 {
			total += a.Weight
		}
	}
	return total
}
