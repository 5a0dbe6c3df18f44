package services

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/joshua-takyi/tryfield/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStore is an in-memory stand-in for every repository the services use.
type memStore struct {
	mu sync.Mutex

	tries          map[primitive.ObjectID]*models.Try
	participations map[primitive.ObjectID]*models.Participation
	notifications  []*models.Notification
	outbox         map[primitive.ObjectID]*models.Outbox
	rooms          map[primitive.ObjectID]*models.DMRoom
	messages       []*models.DMMessage
	chats          []*models.TryChatMessage
	comments       map[primitive.ObjectID]*models.Comment
	reviews        []*models.Review
	ratings        []*models.UserRating
	users          map[string]*models.User
	drafts         map[string]*models.Draft

	// failInserts makes the next n notification inserts fail.
	failInserts int
	// failMarks makes the next n outbox delivery marks fail.
	failMarks int
}

func newMemStore() *memStore {
	return &memStore{
		tries:          map[primitive.ObjectID]*models.Try{},
		participations: map[primitive.ObjectID]*models.Participation{},
		outbox:         map[primitive.ObjectID]*models.Outbox{},
		rooms:          map[primitive.ObjectID]*models.DMRoom{},
		comments:       map[primitive.ObjectID]*models.Comment{},
		users:          map[string]*models.User{},
		drafts:         map[string]*models.Draft{},
	}
}

var errStoreDown = errors.New("store unavailable")

func copyTry(t *models.Try) *models.Try {
	cp := *t
	cp.Dates = append([]string(nil), t.Dates...)
	return &cp
}

func (s *memStore) CreateTry(_ context.Context, try *models.Try) (*models.Try, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tries[try.ID] = copyTry(try)
	return copyTry(try), nil
}

func (s *memStore) GetTry(_ context.Context, id primitive.ObjectID) (*models.Try, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tries[id]
	if !ok {
		return nil, models.ErrTryNotFound
	}
	return copyTry(t), nil
}

func (s *memStore) ListTries(_ context.Context, filter models.TryFilter) ([]*models.Try, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Try
	for _, t := range s.tries {
		if filter.OwnerID != "" && t.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Category != "" && t.Category != filter.Category {
			continue
		}
		out = append(out, copyTry(t))
	}
	return out, int64(len(out)), nil
}

func (s *memStore) UpdateTry(_ context.Context, id primitive.ObjectID, set bson.M) (*models.Try, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tries[id]
	if !ok {
		return nil, models.ErrTryNotFound
	}
	raw, err := bson.Marshal(t)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	for k, v := range set {
		doc[k] = v
	}
	if raw, err = bson.Marshal(doc); err != nil {
		return nil, err
	}
	var updated models.Try
	if err := bson.Unmarshal(raw, &updated); err != nil {
		return nil, err
	}
	s.tries[id] = &updated
	return copyTry(&updated), nil
}

func (s *memStore) DeleteTry(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tries[id]; !ok {
		return models.ErrTryNotFound
	}
	delete(s.tries, id)
	for pid, p := range s.participations {
		if p.TryID == id {
			delete(s.participations, pid)
		}
	}
	return nil
}

func (s *memStore) ClaimSeat(_ context.Context, id primitive.ObjectID) (*models.Try, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tries[id]
	if !ok {
		return nil, models.ErrTryNotFound
	}
	if t.Status != models.TryStatusOpen {
		return nil, models.ErrTryNotOpen
	}
	if t.ParticipantCount >= t.Capacity {
		return nil, models.ErrCapacityReached
	}
	t.ParticipantCount++
	return copyTry(t), nil
}

func (s *memStore) ReleaseSeat(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tries[id]; ok && t.ParticipantCount > 0 {
		t.ParticipantCount--
	}
	return nil
}

func (s *memStore) CompleteTry(_ context.Context, c *models.Completion) (*models.Try, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tries[c.TryID]
	if !ok {
		return nil, models.ErrTryNotFound
	}
	if t.Status == models.TryStatusCompleted {
		return nil, models.ErrTryAlreadyCompleted
	}
	now := time.Now()
	t.Status = models.TryStatusCompleted
	t.Progress = models.ProgressComplete
	t.CompletedAt = &now
	return copyTry(t), nil
}

func (s *memStore) CountCompletedByOwner(_ context.Context, ownerID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, t := range s.tries {
		if t.OwnerID == ownerID && t.Status == models.TryStatusCompleted {
			n++
		}
	}
	return n, nil
}

func (s *memStore) CreateParticipation(_ context.Context, p *models.Participation) (*models.Participation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.participations {
		if existing.Active && existing.TryID == p.TryID && existing.UserID == p.UserID {
			return nil, models.ErrAlreadyRequested
		}
	}
	cp := *p
	s.participations[p.ID] = &cp
	out := cp
	return &out, nil
}

func (s *memStore) GetParticipation(_ context.Context, id primitive.ObjectID) (*models.Participation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.participations[id]
	if !ok {
		return nil, models.ErrParticipationNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *memStore) FindActiveParticipation(_ context.Context, tryID primitive.ObjectID, userID string) (*models.Participation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.participations {
		if p.Active && p.TryID == tryID && p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, models.ErrParticipationNotFound
}

func (s *memStore) TransitionParticipation(_ context.Context, id primitive.ObjectID, from, to models.ParticipationStatus) (*models.Participation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.participations[id]
	if !ok {
		return nil, models.ErrParticipationNotFound
	}
	if p.Status != from {
		return nil, models.ErrInvalidTransition
	}
	p.Status = to
	p.Active = to.Active()
	p.UpdatedAt = time.Now()
	cp := *p
	return &cp, nil
}

func (s *memStore) DeleteParticipation(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.participations, id)
	return nil
}

func (s *memStore) ListParticipations(_ context.Context, tryID primitive.ObjectID, status models.ParticipationStatus) ([]*models.Participation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Participation
	for _, p := range s.participations {
		if p.TryID != tryID || (status != "" && p.Status != status) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (s *memStore) ListParticipationsByUser(_ context.Context, userID string) ([]*models.Participation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Participation
	for _, p := range s.participations {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memStore) InsertNotification(_ context.Context, n *models.Notification) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failInserts > 0 {
		s.failInserts--
		return false, errStoreDown
	}
	if n.OutboxID != nil {
		for _, existing := range s.notifications {
			if existing.OutboxID != nil && *existing.OutboxID == *n.OutboxID && existing.UserID == n.UserID {
				return false, nil
			}
		}
	}
	cp := *n
	s.notifications = append(s.notifications, &cp)
	return true, nil
}

func (s *memStore) ListNotifications(_ context.Context, userID string, limit int) ([]*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Notification
	for i := len(s.notifications) - 1; i >= 0 && len(out) < limit; i-- {
		if s.notifications[i].UserID == userID {
			cp := *s.notifications[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memStore) CountUnread(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, item := range s.notifications {
		if item.UserID == userID && !item.IsRead {
			n++
		}
	}
	return n, nil
}

func (s *memStore) MarkNotificationRead(_ context.Context, id primitive.ObjectID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.notifications {
		if item.ID == id && item.UserID == userID {
			item.IsRead = true
			return nil
		}
	}
	return models.ErrNotificationNotFound
}

func (s *memStore) MarkAllNotificationsRead(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, item := range s.notifications {
		if item.UserID == userID && !item.IsRead {
			item.IsRead = true
			n++
		}
	}
	return n, nil
}

// notificationsFor returns what userID has received, oldest first.
func (s *memStore) notificationsFor(userID string) []*models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Notification
	for _, n := range s.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

func (s *memStore) CreateOutbox(_ context.Context, o *models.Outbox) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *o
	s.outbox[o.ID] = &cp
	return nil
}

func (s *memStore) ClaimDueOutbox(_ context.Context, now, leaseUntil time.Time) (*models.Outbox, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []*models.Outbox
	for _, o := range s.outbox {
		if o.Status == models.OutboxPending && !o.NextAttemptAt.After(now) {
			due = append(due, o)
		}
	}
	if len(due) == 0 {
		return nil, nil
	}
	sort.Slice(due, func(i, j int) bool { return due[i].NextAttemptAt.Before(due[j].NextAttemptAt) })
	due[0].NextAttemptAt = leaseUntil
	cp := *due[0]
	cp.Delivered = append([]string(nil), due[0].Delivered...)
	return &cp, nil
}

func (s *memStore) MarkOutboxDelivered(_ context.Context, id primitive.ObjectID, recipient string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failMarks > 0 {
		s.failMarks--
		return errStoreDown
	}
	o, ok := s.outbox[id]
	if !ok {
		return models.ErrOutboxNotFound
	}
	for _, d := range o.Delivered {
		if d == recipient {
			return nil
		}
	}
	o.Delivered = append(o.Delivered, recipient)
	return nil
}

func (s *memStore) RescheduleOutbox(_ context.Context, id primitive.ObjectID, attempts int, next time.Time, lastErr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.outbox[id]
	if !ok {
		return models.ErrOutboxNotFound
	}
	o.Attempts = attempts
	o.NextAttemptAt = next
	o.LastError = lastErr
	return nil
}

func (s *memStore) FinishOutbox(_ context.Context, id primitive.ObjectID, status models.OutboxStatus, lastErr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.outbox[id]
	if !ok {
		return models.ErrOutboxNotFound
	}
	now := time.Now()
	o.Status = status
	o.LastError = lastErr
	o.CompletedAt = &now
	return nil
}

func (s *memStore) outboxEntry(id primitive.ObjectID) models.Outbox {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.outbox[id]
}

func (s *memStore) ResolveRoom(_ context.Context, a, b string) (*models.DMRoom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := models.PairKey(a, b)
	for _, r := range s.rooms {
		if r.PairKey == key {
			cp := *r
			return &cp, nil
		}
	}
	now := time.Now()
	room := &models.DMRoom{
		ID:           primitive.NewObjectID(),
		Participants: models.SortedPair(a, b),
		PairKey:      key,
		UnreadCounts: map[string]int{a: 0, b: 0},
		LastUpdated:  now,
		CreatedAt:    now,
	}
	s.rooms[room.ID] = room
	cp := *room
	return &cp, nil
}

func (s *memStore) GetRoom(_ context.Context, id primitive.ObjectID) (*models.DMRoom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		return nil, models.ErrRoomNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *memStore) ListRooms(_ context.Context, userID string) ([]*models.DMRoom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.DMRoom
	for _, r := range s.rooms {
		if r.HasMember(userID) {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memStore) AppendMessage(_ context.Context, room *models.DMRoom, msg *models.DMMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[room.ID]
	if !ok {
		return models.ErrRoomNotFound
	}
	cp := *msg
	s.messages = append(s.messages, &cp)
	r.LastMessage = msg.Text
	r.LastSenderID = msg.SenderID
	r.LastUpdated = msg.CreatedAt
	counts := make(map[string]int, len(r.UnreadCounts))
	for k, v := range r.UnreadCounts {
		counts[k] = v
	}
	counts[r.Counterpart(msg.SenderID)]++
	r.UnreadCounts = counts
	return nil
}

func (s *memStore) ListMessages(_ context.Context, roomID primitive.ObjectID, page models.HistoryPage) ([]*models.DMMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var scoped []*models.DMMessage
	for _, m := range s.messages {
		if m.RoomID == roomID {
			cp := *m
			scoped = append(scoped, &cp)
		}
	}
	return historyOf(scoped, func(m *models.DMMessage) primitive.ObjectID { return m.ID }, page)
}

// historyOf pages a chronological slice the way the Mongo history query does.
func historyOf[T any](items []*T, id func(*T) primitive.ObjectID, page models.HistoryPage) ([]*T, error) {
	if !page.Before.IsZero() {
		cut := -1
		for i, it := range items {
			if id(it) == page.Before {
				cut = i
				break
			}
		}
		if cut < 0 {
			return nil, models.ErrInvalidInput
		}
		items = items[:cut]
	}
	if page.Limit > 0 && len(items) > page.Limit {
		items = items[len(items)-page.Limit:]
	}
	out := make([]*T, len(items))
	copy(out, items)
	return out, nil
}

func (s *memStore) MarkRoomRead(_ context.Context, room *models.DMRoom, readerID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[room.ID]
	if !ok {
		return 0, models.ErrRoomNotFound
	}
	var n int64
	for _, m := range s.messages {
		if m.RoomID == room.ID && m.SenderID != readerID && !m.IsRead {
			m.IsRead = true
			n++
		}
	}
	counts := make(map[string]int, len(r.UnreadCounts))
	for k, v := range r.UnreadCounts {
		counts[k] = v
	}
	counts[readerID] = 0
	r.UnreadCounts = counts
	return n, nil
}

func (s *memStore) InsertChatMessage(_ context.Context, msg *models.TryChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *msg
	s.chats = append(s.chats, &cp)
	return nil
}

func (s *memStore) ListChatMessages(_ context.Context, tryID primitive.ObjectID, page models.HistoryPage) ([]*models.TryChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var scoped []*models.TryChatMessage
	for _, m := range s.chats {
		if m.TryID == tryID {
			cp := *m
			scoped = append(scoped, &cp)
		}
	}
	return historyOf(scoped, func(m *models.TryChatMessage) primitive.ObjectID { return m.ID }, page)
}

func (s *memStore) InsertComment(_ context.Context, c *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.comments[c.ID] = &cp
	return nil
}

func (s *memStore) ListComments(_ context.Context, tryID primitive.ObjectID) ([]*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Comment
	for _, c := range s.comments {
		if c.TryID == tryID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memStore) GetComment(_ context.Context, id primitive.ObjectID) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok {
		return nil, models.ErrCommentNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *memStore) DeleteComment(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[id]; !ok {
		return models.ErrCommentNotFound
	}
	delete(s.comments, id)
	return nil
}

func (s *memStore) CreateReview(_ context.Context, r *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.reviews {
		if existing.TryID == r.TryID && existing.ReviewerID == r.ReviewerID && existing.ReviewedUserID == r.ReviewedUserID {
			return models.ErrAlreadyReviewed
		}
	}
	cp := *r
	s.reviews = append(s.reviews, &cp)
	return nil
}

func (s *memStore) ListReviewsByTry(_ context.Context, tryID primitive.ObjectID) ([]*models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Review
	for _, r := range s.reviews {
		if r.TryID == tryID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memStore) ListReviewsForUser(_ context.Context, userID string) ([]*models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Review
	for _, r := range s.reviews {
		if r.ReviewedUserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memStore) CreateUserRating(_ context.Context, r *models.UserRating) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.ratings {
		if existing.TryID == r.TryID && existing.RaterID == r.RaterID && existing.RatedID == r.RatedID {
			return models.ErrAlreadyRated
		}
	}
	cp := *r
	s.ratings = append(s.ratings, &cp)
	if u, ok := s.users[r.RatedID]; ok {
		if u.RatingSummary.Buckets == nil {
			u.RatingSummary.Buckets = map[string]int{}
		}
		u.RatingSummary.TotalRatings++
		u.RatingSummary.RatingSum += r.Rating
		u.RatingSummary.Buckets[string(rune('0'+r.Rating))]++
	}
	return nil
}

func (s *memStore) ListRatingsForUser(_ context.Context, userID string) ([]*models.UserRating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.UserRating
	for _, r := range s.ratings {
		if r.RatedID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memStore) ListRatingsByTry(_ context.Context, tryID primitive.ObjectID) ([]*models.UserRating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.UserRating
	for _, r := range s.ratings {
		if r.TryID == tryID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memStore) EnsureUser(_ context.Context, user *models.User) (*models.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.users[user.ID]; ok {
		cp := *existing
		return &cp, false, nil
	}
	cp := *user
	settings := models.DefaultPrivacySettings()
	cp.Privacy = &settings
	cp.Role = models.RoleUser
	s.users[user.ID] = &cp
	out := cp
	return &out, true, nil
}

func (s *memStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memStore) UpdateUser(_ context.Context, id string, fields map[string]interface{}) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	if v, ok := fields["display_name"].(string); ok {
		u.DisplayName = v
	}
	if v, ok := fields["bio"].(string); ok {
		u.Bio = v
	}
	if v, ok := fields["photo_url"].(string); ok {
		u.PhotoURL = v
	}
	cp := *u
	return &cp, nil
}

func (s *memStore) UpdatePrivacy(_ context.Context, id string, settings models.PrivacySettings) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	u.Privacy = &settings
	cp := *u
	return &cp, nil
}

func (s *memStore) AddDeviceToken(_ context.Context, id, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.ErrUserNotFound
	}
	for _, t := range u.DeviceTokens {
		if t == token {
			return nil
		}
	}
	u.DeviceTokens = append(u.DeviceTokens, token)
	return nil
}

func (s *memStore) RemoveDeviceToken(_ context.Context, id, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		kept := u.DeviceTokens[:0]
		for _, t := range u.DeviceTokens {
			if t != token {
				kept = append(kept, t)
			}
		}
		u.DeviceTokens = kept
	}
	return nil
}

func (s *memStore) DeviceTokens(_ context.Context, id string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	return append([]string(nil), u.DeviceTokens...), nil
}

func (s *memStore) SaveDraft(_ context.Context, userID string, draft *models.Draft, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *draft
	s.drafts[userID] = &cp
	return nil
}

func (s *memStore) LoadDraft(_ context.Context, userID string) (*models.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[userID]
	if !ok {
		return nil, models.ErrDraftNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *memStore) DeleteDraft(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, userID)
	return nil
}

func (s *memStore) DraftExists(_ context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.drafts[userID]
	return ok, nil
}

func (s *memStore) addUser(id, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	settings := models.DefaultPrivacySettings()
	s.users[id] = &models.User{ID: id, DisplayName: name, Role: models.RoleUser, Privacy: &settings}
}

type recordingPusher struct {
	mu   sync.Mutex
	sent []*models.Notification
}

func (p *recordingPusher) Push(_ context.Context, n *models.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, n)
	return nil
}

type memObjectStore struct {
	objects map[string][]byte
}

func (m *memObjectStore) Upload(_ context.Context, objectPath, _ string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.objects[objectPath] = data
	return "https://cdn.example.com/" + objectPath, nil
}

func (m *memObjectStore) Delete(_ context.Context, objectPath string) error {
	delete(m.objects, objectPath)
	return nil
}
