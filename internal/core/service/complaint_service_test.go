package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/civichub/society-api/internal/core/domain"
	"github.com/civichub/society-api/internal/core/ports"
)

type complaintFixture struct {
	svc           *ComplaintService
	users         *stubUserRepo
	complaints    *stubComplaintRepo
	notifications *stubNotificationRepo
	idempotency   *stubIdempotency

	alice domain.Identity
	bob   domain.Identity
	admin domain.Identity
}

func newComplaintFixture() *complaintFixture {
	f := &complaintFixture{
		users:         newStubUserRepo(),
		complaints:    newStubComplaintRepo(),
		notifications: &stubNotificationRepo{},
		idempotency:   newStubIdempotency(),
	}
	f.users.add(&domain.User{ID: "alice", Name: "Alice", Email: "alice@example.com", Role: domain.RoleResident, UnitNumber: "4B"})
	f.users.add(&domain.User{ID: "bob", Name: "Bob", Email: "bob@example.com", Role: domain.RoleResident})
	f.users.add(&domain.User{ID: "admin", Name: "Admin", Email: "admin@example.com", Role: domain.RoleAdmin})

	notifier := NewNotificationService(f.notifications, nil, discardLogger)
	f.svc = NewComplaintService(f.complaints, f.users, notifier, f.idempotency, discardLogger)

	f.alice = domain.Identity{SubjectID: "alice", Role: domain.RoleResident}
	f.bob = domain.Identity{SubjectID: "bob", Role: domain.RoleResident}
	f.admin = domain.Identity{SubjectID: "admin", Role: domain.RoleAdmin}
	return f
}

func (f *complaintFixture) submit(t *testing.T, who domain.Identity, issue string) *domain.Complaint {
	t.Helper()
	res, err := f.svc.Submit(context.Background(), who, ports.SubmitComplaintInput{Issue: issue})
	if err != nil {
		t.Fatalf("Submit(%q) returned error: %v", issue, err)
	}
	return res.Complaint
}

func TestComplaintService_Submit_NotifiesAdmins(t *testing.T) {
	f := newComplaintFixture()

	c := f.submit(t, f.alice, "  Leaky faucet ")
	if c.Status != domain.StatusPending {
		t.Fatalf("expected PENDING, got %s", c.Status)
	}
	if c.Issue != "Leaky faucet" || c.OwnerID != "alice" {
		t.Fatalf("unexpected complaint: %+v", c)
	}

	adminInbox := f.notifications.addressedTo("admin")
	if len(adminInbox) != 1 {
		t.Fatalf("expected 1 admin notification, got %d", len(adminInbox))
	}
	if adminInbox[0].Title != "New Complaint Raised" {
		t.Fatalf("unexpected title: %q", adminInbox[0].Title)
	}
	if !strings.Contains(adminInbox[0].Message, "Alice") || !strings.Contains(adminInbox[0].Message, "Leaky faucet") {
		t.Fatalf("message should name resident and issue: %q", adminInbox[0].Message)
	}
	if len(f.notifications.addressedTo("alice")) != 0 {
		t.Fatalf("submitter must not be notified")
	}
}

func TestComplaintService_Submit_EveryAdminNotified(t *testing.T) {
	f := newComplaintFixture()
	f.users.add(&domain.User{ID: "admin2", Name: "Second", Email: "second@example.com", Role: domain.RoleAdmin})

	f.submit(t, f.alice, "Broken lift")

	for _, id := range []string{"admin", "admin2"} {
		if got := len(f.notifications.addressedTo(id)); got != 1 {
			t.Fatalf("expected %s to receive 1 notification, got %d", id, got)
		}
	}
}

func TestComplaintService_Submit_Validation(t *testing.T) {
	f := newComplaintFixture()

	for name, issue := range map[string]string{
		"empty":    "",
		"blank":    "   \t",
		"too long": strings.Repeat("x", domain.MaxIssueLength+1),
	} {
		_, err := f.svc.Submit(context.Background(), f.alice, ports.SubmitComplaintInput{Issue: issue})
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("%s: expected ErrValidation, got %v", name, err)
		}
	}
	if len(f.complaints.items) != 0 || len(f.notifications.items) != 0 {
		t.Fatalf("rejected submissions must have no side effects")
	}

	if _, err := f.svc.Submit(context.Background(), f.alice, ports.SubmitComplaintInput{Issue: strings.Repeat("é", domain.MaxIssueLength)}); err != nil {
		t.Fatalf("issue at the limit should be accepted: %v", err)
	}
}

func TestComplaintService_Submit_AdminForbidden(t *testing.T) {
	f := newComplaintFixture()

	_, err := f.svc.Submit(context.Background(), f.admin, ports.SubmitComplaintInput{Issue: "x"})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestComplaintService_Submit_StorageFailure(t *testing.T) {
	f := newComplaintFixture()
	f.complaints.createErr = domain.StorageError("insert complaint", errDBDown)

	_, err := f.svc.Submit(context.Background(), f.alice, ports.SubmitComplaintInput{Issue: "x"})
	if !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
	if len(f.notifications.items) != 0 {
		t.Fatalf("no notification should be emitted when the complaint was not stored")
	}
}

func TestComplaintService_Submit_Idempotent(t *testing.T) {
	f := newComplaintFixture()
	ctx := context.Background()
	in := ports.SubmitComplaintInput{Issue: "Leaky faucet", IdempotencyKey: "key-1"}

	first, err := f.svc.Submit(ctx, f.alice, in)
	if err != nil {
		t.Fatalf("first Submit returned error: %v", err)
	}
	second, err := f.svc.Submit(ctx, f.alice, in)
	if err != nil {
		t.Fatalf("replayed Submit returned error: %v", err)
	}

	if !second.Replayed || second.Complaint.ID != first.Complaint.ID {
		t.Fatalf("expected replay of %s, got %+v", first.Complaint.ID, second)
	}
	if len(f.complaints.items) != 1 {
		t.Fatalf("expected one stored complaint, got %d", len(f.complaints.items))
	}
	if len(f.notifications.addressedTo("admin")) != 1 {
		t.Fatalf("replay must not notify again")
	}

	// Keys are scoped per owner.
	other, err := f.svc.Submit(ctx, f.bob, in)
	if err != nil || other.Replayed {
		t.Fatalf("bob's submission with the same key must not replay alice's: %+v (%v)", other, err)
	}
}

func TestComplaintService_Submit_IdempotencyLookupFailure(t *testing.T) {
	f := newComplaintFixture()
	f.idempotency.lookupErr = errDBDown

	res, err := f.svc.Submit(context.Background(), f.alice, ports.SubmitComplaintInput{Issue: "x", IdempotencyKey: "k"})
	if err != nil {
		t.Fatalf("lookup failure should not block submission: %v", err)
	}
	if res.Replayed {
		t.Fatalf("expected a fresh complaint")
	}
}

func TestComplaintService_ListOwn_Isolation(t *testing.T) {
	f := newComplaintFixture()
	a1 := f.submit(t, f.alice, "first")
	f.submit(t, f.bob, "bob's")
	a2 := f.submit(t, f.alice, "second")

	list, err := f.svc.ListOwn(context.Background(), "alice")
	if err != nil {
		t.Fatalf("ListOwn returned error: %v", err)
	}
	if len(list) != 2 || list[0].ID != a2.ID || list[1].ID != a1.ID {
		t.Fatalf("expected alice's complaints newest first, got %+v", list)
	}

	empty, err := f.svc.ListOwn(context.Background(), "nobody")
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil list, got %v (%v)", empty, err)
	}
}

func TestComplaintService_ListAll(t *testing.T) {
	f := newComplaintFixture()
	f.submit(t, f.alice, "first")
	f.submit(t, f.bob, "second")

	if _, err := f.svc.ListAll(context.Background(), f.alice); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for resident, got %v", err)
	}

	views, err := f.svc.ListAll(context.Background(), f.admin)
	if err != nil {
		t.Fatalf("ListAll returned error: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 complaints, got %d", len(views))
	}
	if views[0].Owner == nil || views[0].Owner.Name != "Bob" {
		t.Fatalf("expected newest complaint joined with Bob, got %+v", views[0].Owner)
	}
	if views[1].Owner == nil || views[1].Owner.Email != "alice@example.com" {
		t.Fatalf("expected alice's contact details, got %+v", views[1].Owner)
	}
}

func TestComplaintService_UpdateStatus_Lifecycle(t *testing.T) {
	f := newComplaintFixture()
	ctx := context.Background()
	c := f.submit(t, f.alice, "Leaky faucet")

	updated, err := f.svc.UpdateStatus(ctx, f.admin, c.ID, "IN_PROGRESS")
	if err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}
	if updated.Status != domain.StatusInProgress {
		t.Fatalf("expected IN_PROGRESS, got %s", updated.Status)
	}
	if updated.UpdatedAt.Before(c.CreatedAt) {
		t.Fatalf("updated_at must not precede created_at")
	}

	if _, err := f.svc.UpdateStatus(ctx, f.admin, c.ID, "RESOLVED"); err != nil {
		t.Fatalf("UpdateStatus to RESOLVED returned error: %v", err)
	}

	inbox := f.notifications.addressedTo("alice")
	if len(inbox) != 2 {
		t.Fatalf("expected alice to receive 2 notifications, got %d", len(inbox))
	}
	for i, want := range []string{"IN_PROGRESS", "RESOLVED"} {
		if inbox[i].Title != "Complaint Status Updated" || !strings.Contains(inbox[i].Message, want) {
			t.Fatalf("notification %d: unexpected %+v", i, inbox[i])
		}
		if !strings.Contains(inbox[i].Message, "Leaky faucet") {
			t.Fatalf("notification %d should quote the issue: %q", i, inbox[i].Message)
		}
	}

	own, _ := f.svc.ListOwn(ctx, "alice")
	if own[0].Status != domain.StatusResolved {
		t.Fatalf("alice should see RESOLVED, got %s", own[0].Status)
	}
}

func TestComplaintService_UpdateStatus_Rejections(t *testing.T) {
	f := newComplaintFixture()
	ctx := context.Background()
	c := f.submit(t, f.alice, "Leaky faucet")
	notesBefore := len(f.notifications.items)

	if _, err := f.svc.UpdateStatus(ctx, f.alice, c.ID, "RESOLVED"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for resident, got %v", err)
	}
	if _, err := f.svc.UpdateStatus(ctx, f.admin, c.ID, "DONE"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown status, got %v", err)
	}
	if _, err := f.svc.UpdateStatus(ctx, f.admin, "missing", "RESOLVED"); !errors.Is(err, domain.ErrComplaintNotFound) {
		t.Fatalf("expected ErrComplaintNotFound, got %v", err)
	}
	if _, err := f.svc.UpdateStatus(ctx, f.admin, c.ID, "RESOLVED"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for PENDING->RESOLVED, got %v", err)
	}
	if _, err := f.svc.UpdateStatus(ctx, f.admin, c.ID, "PENDING"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for self transition, got %v", err)
	}

	if f.complaints.updates != 0 {
		t.Fatalf("rejected updates must not touch storage")
	}
	if len(f.notifications.items) != notesBefore {
		t.Fatalf("rejected updates must not notify")
	}
}

func TestComplaintService_UpdateStatus_TerminalStates(t *testing.T) {
	f := newComplaintFixture()
	ctx := context.Background()

	rejected := f.submit(t, f.alice, "noise")
	if _, err := f.svc.UpdateStatus(ctx, f.admin, rejected.ID, "REJECTED"); err != nil {
		t.Fatalf("PENDING->REJECTED returned error: %v", err)
	}

	for _, next := range []string{"PENDING", "IN_PROGRESS", "RESOLVED", "REJECTED"} {
		if _, err := f.svc.UpdateStatus(ctx, f.admin, rejected.ID, next); !errors.Is(err, domain.ErrInvalidTransition) {
			t.Fatalf("REJECTED->%s: expected ErrInvalidTransition, got %v", next, err)
		}
	}
}

func TestComplaintService_UpdateStatus_ConcurrentChange(t *testing.T) {
	f := newComplaintFixture()
	ctx := context.Background()
	c := f.submit(t, f.alice, "x")

	// Another admin rejects it between our read and write.
	f.complaints.afterFind = func() { f.complaints.items[0].Status = domain.StatusRejected }

	if _, err := f.svc.UpdateStatus(ctx, f.admin, c.ID, "IN_PROGRESS"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if len(f.notifications.addressedTo("alice")) != 0 {
		t.Fatalf("lost race must not notify the owner")
	}
}

func TestComplaintService_UpdateStatus_StorageFailure(t *testing.T) {
	f := newComplaintFixture()
	c := f.submit(t, f.alice, "x")
	f.complaints.updateErr = domain.StorageError("update complaint", errDBDown)

	if _, err := f.svc.UpdateStatus(context.Background(), f.admin, c.ID, "IN_PROGRESS"); !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
}

func TestComplaintService_Submit_RetryAfterFailedFanOut(t *testing.T) {
	f := newComplaintFixture()
	ctx := context.Background()
	in := ports.SubmitComplaintInput{Issue: "Leaky faucet", IdempotencyKey: "k1"}

	f.notifications.createErr = domain.StorageError("insert notification", errDBDown)
	if _, err := f.svc.Submit(ctx, f.alice, in); !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("expected ErrStorage from failed fan-out, got %v", err)
	}
	if len(f.idempotency.keys) != 0 {
		t.Fatalf("idempotency key must not be bound when admins were not notified")
	}

	f.notifications.createErr = nil
	res, err := f.svc.Submit(ctx, f.alice, in)
	if err != nil {
		t.Fatalf("retry returned error: %v", err)
	}
	if res.Replayed {
		t.Fatalf("retry after a failed fan-out must be processed, not replayed")
	}
	if got := len(f.notifications.addressedTo("admin")); got != 1 {
		t.Fatalf("expected admin to hold exactly one notification, got %d", got)
	}

	// Now that the fan-out succeeded, the key replays.
	again, err := f.svc.Submit(ctx, f.alice, in)
	if err != nil || !again.Replayed || again.Complaint.ID != res.Complaint.ID {
		t.Fatalf("expected replay of %s, got %+v (%v)", res.Complaint.ID, again, err)
	}
	if got := len(f.notifications.addressedTo("admin")); got != 1 {
		t.Fatalf("replay must not notify again, admin has %d", got)
	}
}

func TestComplaintService_UpdateStatus_NotificationFailureKeepsUpdate(t *testing.T) {
	f := newComplaintFixture()
	ctx := context.Background()
	c := f.submit(t, f.alice, "Leaky faucet")

	f.notifications.createErr = domain.StorageError("insert notification", errDBDown)
	updated, err := f.svc.UpdateStatus(ctx, f.admin, c.ID, "IN_PROGRESS")
	if err != nil {
		t.Fatalf("committed status change must be reported as success, got %v", err)
	}
	if updated.Status != domain.StatusInProgress {
		t.Fatalf("expected IN_PROGRESS, got %s", updated.Status)
	}

	own, _ := f.svc.ListOwn(ctx, "alice")
	if own[0].Status != domain.StatusInProgress {
		t.Fatalf("stored status should be IN_PROGRESS, got %s", own[0].Status)
	}
}
