package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/joshua-takyi/tryfield/internal/models"
)

func TestApproveNotifiesApplicantOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	try := h.seedTry(t, "owner", 5, models.AdmissionApproval)

	p, err := h.participations.Request(ctx, actor("alice"), try.ID, JoinRequest{Name: "Alice"})
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if p.Status != models.StatusRequested {
		t.Fatalf("status = %s, want requested", p.Status)
	}

	ownerInbox := h.store.notificationsFor("owner")
	if len(ownerInbox) != 1 || ownerInbox[0].Type != models.NotificationTryApplication {
		t.Fatalf("owner inbox = %v, want one try_application", typesOf(ownerInbox))
	}

	approved, err := h.participations.Approve(ctx, actor("owner"), p.ID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if approved.Status != models.StatusApproved {
		t.Fatalf("status = %s, want approved", approved.Status)
	}

	inbox := h.store.notificationsFor("alice")
	if len(inbox) != 1 {
		t.Fatalf("alice got %d notifications, want 1", len(inbox))
	}
	n := inbox[0]
	if n.Type != models.NotificationApplicationApproved {
		t.Errorf("type = %s", n.Type)
	}
	if n.Title != "参加申請が承認されました" {
		t.Errorf("title = %q", n.Title)
	}
	if n.Link != "/tries/"+try.ID.Hex() {
		t.Errorf("link = %q", n.Link)
	}

	got, _ := h.store.GetTry(ctx, try.ID)
	if got.ParticipantCount != 1 {
		t.Errorf("participant count = %d, want 1", got.ParticipantCount)
	}
}

func TestRejectNotifiesApplicant(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	try := h.seedTry(t, "owner", 5, models.AdmissionApproval)

	p, err := h.participations.Request(ctx, actor("bob"), try.ID, JoinRequest{})
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if p.Name != "bob" {
		t.Errorf("name defaulted to %q, want display name", p.Name)
	}
	rejected, err := h.participations.Reject(ctx, actor("owner"), p.ID)
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if rejected.Status != models.StatusRejected {
		t.Fatalf("status = %s", rejected.Status)
	}
	inbox := h.store.notificationsFor("bob")
	if len(inbox) != 1 || inbox[0].Type != models.NotificationApplicationRejected {
		t.Fatalf("bob inbox = %v", typesOf(inbox))
	}

	if _, err := h.participations.Approve(ctx, actor("owner"), p.ID); !errors.Is(err, models.ErrInvalidTransition) {
		t.Errorf("approve after reject: err = %v, want ErrInvalidTransition", err)
	}

	// A rejected request is terminal, so the user may apply again.
	if _, err := h.participations.Request(ctx, actor("bob"), try.ID, JoinRequest{}); err != nil {
		t.Errorf("re-request after reject: %v", err)
	}
}

func TestOnlyOrganizerCanDecide(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	try := h.seedTry(t, "owner", 5, models.AdmissionApproval)
	p, _ := h.participations.Request(ctx, actor("alice"), try.ID, JoinRequest{})

	if _, err := h.participations.Approve(ctx, actor("alice"), p.ID); !errors.Is(err, models.ErrNotOrganizer) {
		t.Errorf("self approve: err = %v", err)
	}
	if _, err := h.participations.Reject(ctx, actor("mallory"), p.ID); !errors.Is(err, models.ErrNotOrganizer) {
		t.Errorf("stranger reject: err = %v", err)
	}
}

func TestRequestGuards(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	try := h.seedTry(t, "owner", 5, models.AdmissionApproval)

	if _, err := h.participations.Request(ctx, actor("owner"), try.ID, JoinRequest{}); !errors.Is(err, models.ErrSelfAction) {
		t.Errorf("organizer request: err = %v", err)
	}
	if _, err := h.participations.Request(ctx, actor("alice"), try.ID, JoinRequest{}); err != nil {
		t.Fatalf("first request: %v", err)
	}
	if _, err := h.participations.Request(ctx, actor("alice"), try.ID, JoinRequest{}); !errors.Is(err, models.ErrAlreadyRequested) {
		t.Errorf("duplicate request: err = %v", err)
	}
	if _, err := h.participations.Request(ctx, Actor{}, try.ID, JoinRequest{}); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("anonymous request: err = %v", err)
	}
}

func TestConcurrentApprovalsNeverExceedCapacity(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	const capacity = 3
	try := h.seedTry(t, "owner", capacity, models.AdmissionApproval)

	var pending []*models.Participation
	for _, user := range []string{"u1", "u2", "u3", "u4", "u5", "u6", "u7", "u8"} {
		p, err := h.participations.Request(ctx, actor(user), try.ID, JoinRequest{})
		if err != nil {
			t.Fatalf("request %s: %v", user, err)
		}
		pending = append(pending, p)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		approved int
		full     int
	)
	for _, p := range pending {
		wg.Add(1)
		go func(p *models.Participation) {
			defer wg.Done()
			_, err := h.participations.Approve(ctx, actor("owner"), p.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				approved++
			case errors.Is(err, models.ErrCapacityReached):
				full++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(p)
	}
	wg.Wait()

	if approved != capacity {
		t.Errorf("approved = %d, want %d", approved, capacity)
	}
	if full != len(pending)-capacity {
		t.Errorf("capacity rejections = %d, want %d", full, len(pending)-capacity)
	}
	got, _ := h.store.GetTry(ctx, try.ID)
	if got.ParticipantCount != capacity {
		t.Errorf("participant count = %d, want %d", got.ParticipantCount, capacity)
	}
	list, _ := h.store.ListParticipations(ctx, try.ID, models.StatusApproved)
	if len(list) != capacity {
		t.Errorf("approved records = %d, want %d", len(list), capacity)
	}
}

func TestFirstComeAdmission(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	try := h.seedTry(t, "owner", 1, models.AdmissionFirstCome)

	a, err := h.participations.Request(ctx, actor("alice"), try.ID, JoinRequest{})
	if err != nil {
		t.Fatalf("alice: %v", err)
	}
	if a.Status != models.StatusApproved {
		t.Fatalf("alice status = %s, want approved", a.Status)
	}
	ownerInbox := h.store.notificationsFor("owner")
	if len(ownerInbox) != 1 || ownerInbox[0].Type != models.NotificationTryJoined {
		t.Errorf("owner inbox = %v, want one try_joined", typesOf(ownerInbox))
	}

	_, err = h.participations.Request(ctx, actor("bob"), try.ID, JoinRequest{})
	if !errors.Is(err, models.ErrCapacityReached) {
		t.Fatalf("bob: err = %v, want ErrCapacityReached", err)
	}
	if _, err := h.store.FindActiveParticipation(ctx, try.ID, "bob"); !errors.Is(err, models.ErrParticipationNotFound) {
		t.Errorf("bob kept an active record: %v", err)
	}

	got, _ := h.store.GetTry(ctx, try.ID)
	if got.ParticipantCount != 1 {
		t.Errorf("participant count = %d, want 1", got.ParticipantCount)
	}
}

func TestWithdrawReleasesSeat(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	try := h.seedTry(t, "owner", 1, models.AdmissionApproval)
	p := h.join(t, try, "alice")

	if _, err := h.participations.Withdraw(ctx, actor("bob"), p.ID); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("withdraw by someone else: err = %v", err)
	}

	w, err := h.participations.Withdraw(ctx, actor("alice"), p.ID)
	if err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	if w.Status != models.StatusWithdrawn {
		t.Errorf("status = %s", w.Status)
	}
	got, _ := h.store.GetTry(ctx, try.ID)
	if got.ParticipantCount != 0 {
		t.Errorf("participant count = %d, want 0", got.ParticipantCount)
	}
	if _, err := h.participations.Withdraw(ctx, actor("alice"), p.ID); !errors.Is(err, models.ErrInvalidTransition) {
		t.Errorf("second withdraw: err = %v", err)
	}

	// The freed seat can be taken by the next applicant.
	h.join(t, try, "bob")
}

func TestListVisibility(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	try := h.seedTry(t, "owner", 5, models.AdmissionApproval)
	h.join(t, try, "alice")
	if _, err := h.participations.Request(ctx, actor("bob"), try.ID, JoinRequest{}); err != nil {
		t.Fatal(err)
	}

	all, err := h.participations.List(ctx, actor("owner"), try.ID)
	if err != nil || len(all) != 2 {
		t.Fatalf("owner list = %d, %v; want 2", len(all), err)
	}
	public, err := h.participations.List(ctx, Actor{}, try.ID)
	if err != nil || len(public) != 1 {
		t.Fatalf("public list = %d, %v; want 1", len(public), err)
	}

	audience, err := h.participations.Audience(ctx, try.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(audience) != 2 || audience[0] != "owner" || audience[1] != "alice" {
		t.Errorf("audience = %v", audience)
	}
}
