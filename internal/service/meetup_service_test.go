package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/crewhq/meetup-backend/internal/model"
	"github.com/crewhq/meetup-backend/internal/repository"
)

func TestCreateMeetupSeatsAuthor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.newMember(t, "author")
	meetup := env.newMeetup(t, author, 4)

	if meetup.Status != model.MeetupStatusOpen {
		t.Fatalf("status: expected OPEN, got %s", meetup.Status)
	}

	room, err := env.roomSvc.Get(ctx, meetup.RoomID)
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	if room.Kind != model.RoomKindGroup {
		t.Fatalf("room kind: expected GROUP, got %s", room.Kind)
	}
	if room.Occupancy != 1 {
		t.Fatalf("occupancy: expected author seated, got %d", room.Occupancy)
	}

	participants, err := env.meetupSvc.Participants(ctx, meetup.ID)
	if err != nil {
		t.Fatalf("participants: %v", err)
	}
	if len(participants) != 1 || participants[0] != author {
		t.Fatalf("participants: expected [%s], got %v", author, participants)
	}
}

func TestCreateMeetupRequiresCapacity(t *testing.T) {
	env := newTestEnv(t)

	author := env.newMember(t, "author")
	// Capacity 1 is as invalid as 0: the author is auto-seated, so a
	// capacity-1 room would be born full.
	for _, capacity := range []int{0, 1} {
		_, err := env.meetupSvc.Create(context.Background(), author, CreateMeetupInput{
			Title:    "no room",
			Capacity: capacity,
		})
		if !errors.Is(err, repository.ErrInvalidCapacity) {
			t.Fatalf("capacity %d: expected ErrInvalidCapacity, got %v", capacity, err)
		}
	}
}

func TestCompleteFansOutOncePerParticipant(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.newMember(t, "author")
	guest1 := env.newMember(t, "guest1")
	guest2 := env.newMember(t, "guest2")
	meetup := env.newMeetup(t, author, 4)
	for _, id := range []string{guest1, guest2} {
		if _, err := env.roomSvc.Join(ctx, meetup.RoomID, id); err != nil {
			t.Fatalf("join: %v", err)
		}
	}

	completed, completedNow, err := env.meetupSvc.Complete(ctx, meetup.ID, author)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !completedNow {
		t.Fatal("expected first completion to own the transition")
	}
	if completed.Status != model.MeetupStatusCompleted {
		t.Fatalf("status: expected COMPLETED, got %s", completed.Status)
	}

	for _, id := range []string{author, guest1, guest2} {
		items, err := env.notifSvc.List(ctx, id)
		if err != nil {
			t.Fatalf("list notifications: %v", err)
		}
		if len(items) != 1 {
			t.Fatalf("notifications for %s: expected 1, got %d", id, len(items))
		}
		if items[0].Kind != model.NotificationEvaluationRequest {
			t.Fatalf("kind: expected EVALUATION_REQUEST, got %s", items[0].Kind)
		}
		if items[0].MeetupID != meetup.ID {
			t.Fatalf("meetup_id: expected %s, got %s", meetup.ID, items[0].MeetupID)
		}
	}
}

func TestCompleteIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.newMember(t, "author")
	guest := env.newMember(t, "guest")
	meetup := env.newMeetup(t, author, 3)
	if _, err := env.roomSvc.Join(ctx, meetup.RoomID, guest); err != nil {
		t.Fatalf("join: %v", err)
	}

	if _, _, err := env.meetupSvc.Complete(ctx, meetup.ID, author); err != nil {
		t.Fatalf("first complete: %v", err)
	}
	_, completedNow, err := env.meetupSvc.Complete(ctx, meetup.ID, author)
	if err != nil {
		t.Fatalf("repeat complete: %v", err)
	}
	if completedNow {
		t.Fatal("repeat completion must not own the transition")
	}

	items, err := env.notifSvc.List(ctx, guest)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("notifications after repeat complete: expected 1, got %d", len(items))
	}
}

func TestCompleteConcurrently(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.newMember(t, "author")
	guest := env.newMember(t, "guest")
	meetup := env.newMeetup(t, author, 3)
	if _, err := env.roomSvc.Join(ctx, meetup.RoomID, guest); err != nil {
		t.Fatalf("join: %v", err)
	}

	const callers = 6
	var wg sync.WaitGroup
	wins := make(chan bool, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, won, err := env.meetupSvc.Complete(ctx, meetup.ID, author)
			if err != nil {
				t.Errorf("concurrent complete: %v", err)
				return
			}
			wins <- won
		}()
	}
	wg.Wait()
	close(wins)

	winners := 0
	for won := range wins {
		if won {
			winners++
		}
	}
	if winners != 1 {
		t.Fatalf("transition owners: expected exactly 1, got %d", winners)
	}

	items, err := env.notifSvc.List(ctx, guest)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("notifications: expected exactly 1, got %d", len(items))
	}
}

func TestCompleteAuthorOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.newMember(t, "author")
	guest := env.newMember(t, "guest")
	meetup := env.newMeetup(t, author, 3)
	if _, err := env.roomSvc.Join(ctx, meetup.RoomID, guest); err != nil {
		t.Fatalf("join: %v", err)
	}

	_, _, err := env.meetupSvc.Complete(ctx, meetup.ID, guest)
	if !errors.Is(err, repository.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	got, err := env.meetupSvc.Get(ctx, meetup.ID)
	if err != nil {
		t.Fatalf("get meetup: %v", err)
	}
	if got.Status != model.MeetupStatusOpen {
		t.Fatalf("status after rejected complete: expected OPEN, got %s", got.Status)
	}
}

func TestDeleteMeetupCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.newMember(t, "author")
	guest := env.newMember(t, "guest")
	meetup := env.newMeetup(t, author, 3)
	if _, err := env.roomSvc.Join(ctx, meetup.RoomID, guest); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, _, err := env.meetupSvc.Complete(ctx, meetup.ID, author); err != nil {
		t.Fatalf("complete: %v", err)
	}

	t.Run("non-author forbidden", func(t *testing.T) {
		if err := env.meetupSvc.Delete(ctx, meetup.ID, guest, true); !errors.Is(err, repository.ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	if err := env.meetupSvc.Delete(ctx, meetup.ID, author, true); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := env.meetupSvc.Get(ctx, meetup.ID); !errors.Is(err, repository.ErrMeetupNotFound) {
		t.Fatalf("expected ErrMeetupNotFound, got %v", err)
	}
	if _, err := env.roomSvc.Get(ctx, meetup.RoomID); !errors.Is(err, repository.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
	items, err := env.notifSvc.List(ctx, guest)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("notifications after delete: expected none, got %d", len(items))
	}
}

func TestDeleteMeetupKeepsRoom(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.newMember(t, "author")
	guest := env.newMember(t, "guest")
	meetup := env.newMeetup(t, author, 3)
	if _, err := env.roomSvc.Join(ctx, meetup.RoomID, guest); err != nil {
		t.Fatalf("join: %v", err)
	}

	if err := env.meetupSvc.Delete(ctx, meetup.ID, author, false); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := env.meetupSvc.Get(ctx, meetup.ID); !errors.Is(err, repository.ErrMeetupNotFound) {
		t.Fatalf("expected ErrMeetupNotFound, got %v", err)
	}

	// The room and its roster are untouched.
	room, err := env.roomSvc.Get(ctx, meetup.RoomID)
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	if room.Occupancy != 2 {
		t.Fatalf("occupancy: expected 2, got %d", room.Occupancy)
	}
	members, err := env.roomSvc.Members(ctx, meetup.RoomID)
	if err != nil {
		t.Fatalf("members: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("roster: expected 2 members, got %d", len(members))
	}
}

func TestListMeetupsNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.newMember(t, "author")
	for i := 0; i < 3; i++ {
		env.newMeetup(t, author, 2)
	}

	meetups, err := env.meetupSvc.List(ctx, 0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(meetups) != 3 {
		t.Fatalf("list size: expected 3, got %d", len(meetups))
	}
	for i := 1; i < len(meetups); i++ {
		if meetups[i-1].CreatedAt < meetups[i].CreatedAt {
			t.Fatal("list not ordered newest first")
		}
	}
}
