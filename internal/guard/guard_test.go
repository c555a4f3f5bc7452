package guard

import (
	"testing"

	"inkpress/api/internal/models"
)

func TestEvaluateLoadingWinsOverEverything(t *testing.T) {
	// A resolving session must never redirect, even if it would be denied
	// once resolved.
	sess := Session{Loading: true, Authenticated: false}
	eval := Evaluate(sess, models.UserRolePublisher)
	if eval.Decision != DecisionPending {
		t.Fatalf("decision = %v, want DecisionPending", eval.Decision)
	}
	if eval.Target != "" {
		t.Fatalf("pending evaluation carries target %q", eval.Target)
	}
}

func TestEvaluateUnauthenticated(t *testing.T) {
	eval := Evaluate(Session{}, models.UserRoleWriter)
	if eval.Decision != DecisionSignIn {
		t.Fatalf("decision = %v, want DecisionSignIn", eval.Decision)
	}
	if eval.Target != SignInRoute {
		t.Fatalf("target = %q, want %q", eval.Target, SignInRoute)
	}
}

func TestEvaluateRoleMatrix(t *testing.T) {
	tests := []struct {
		name     string
		role     models.UserRole
		required []models.UserRole
		decision Decision
		target   string
	}{
		{
			name:     "writer allowed on writer view",
			role:     models.UserRoleWriter,
			required: []models.UserRole{models.UserRoleWriter},
			decision: DecisionAllow,
		},
		{
			name:     "editor bounced from writer view to editor home",
			role:     models.UserRoleEditor,
			required: []models.UserRole{models.UserRoleWriter},
			decision: DecisionRedirect,
			target:   "/dashboard/editor",
		},
		{
			name:     "writer bounced from publisher view to writer home",
			role:     models.UserRoleWriter,
			required: []models.UserRole{models.UserRolePublisher},
			decision: DecisionRedirect,
			target:   "/dashboard/writer",
		},
		{
			name:     "publisher bounced from editor view to publisher home",
			role:     models.UserRolePublisher,
			required: []models.UserRole{models.UserRoleEditor},
			decision: DecisionRedirect,
			target:   "/dashboard/publisher",
		},
		{
			name:     "any of several required roles passes",
			role:     models.UserRoleEditor,
			required: []models.UserRole{models.UserRoleWriter, models.UserRoleEditor},
			decision: DecisionAllow,
		},
		{
			name:     "no required roles means any authenticated session",
			role:     models.UserRoleWriter,
			decision: DecisionAllow,
		},
		{
			name:     "unknown role falls back to default home",
			role:     models.UserRole("intern"),
			required: []models.UserRole{models.UserRolePublisher},
			decision: DecisionRedirect,
			target:   DefaultHomeRoute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := Session{UserID: "u1", Role: tt.role, Authenticated: true}
			eval := Evaluate(sess, tt.required...)
			if eval.Decision != tt.decision {
				t.Fatalf("decision = %v, want %v", eval.Decision, tt.decision)
			}
			if eval.Target != tt.target {
				t.Fatalf("target = %q, want %q", eval.Target, tt.target)
			}
			if eval.Decision == DecisionAllow && eval.Role != tt.role {
				t.Fatalf("allowed evaluation carries role %q, want %q", eval.Role, tt.role)
			}
		})
	}
}

func TestEvaluateIsPure(t *testing.T) {
	sess := Session{UserID: "u1", Role: models.UserRoleEditor, Authenticated: true}
	first := Evaluate(sess, models.UserRoleWriter)
	for i := 0; i < 5; i++ {
		if got := Evaluate(sess, models.UserRoleWriter); got != first {
			t.Fatalf("evaluation changed across calls: %+v vs %+v", got, first)
		}
	}
}

func TestHomeRoute(t *testing.T) {
	if got := HomeRoute(models.UserRoleWriter); got != "/dashboard/writer" {
		t.Fatalf("writer home = %q", got)
	}
	if got := HomeRoute(models.UserRole("")); got != DefaultHomeRoute {
		t.Fatalf("empty role home = %q, want %q", got, DefaultHomeRoute)
	}
}
