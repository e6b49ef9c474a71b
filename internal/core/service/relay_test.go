package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/cargo-tracking/internal/core/domain"
)

func TestPositionRelay_CachesAndPushes(t *testing.T) {
	cache := newStubCache()
	pusher := &stubPusher{}
	relay := NewPositionRelay(cache, pusher, zerolog.Nop())

	ts := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	err := relay.HandlePosition(context.Background(), domain.LocationUpdate{
		ShipmentID: 12, Latitude: 19.43, Longitude: -99.13, Timestamp: ts,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loc, ok := cache.locs[12]
	if !ok || loc.Latitude != 19.43 || !loc.UpdatedAt.Equal(ts) {
		t.Fatalf("expected cached location, got %+v", cache.locs)
	}

	frames := pusher.frames()
	if len(frames) != 1 || frames[0].target != "shipment-12" || frames[0].event != domain.PushLocationUpdate || !frames[0].local {
		t.Fatalf("unexpected pushes: %+v", frames)
	}
	if p, ok := frames[0].payload.(domain.LocationPush); !ok || p.Longitude != -99.13 {
		t.Fatalf("unexpected payload: %#v", frames[0].payload)
	}
}

func TestPositionRelay_CacheFailureStillPushes(t *testing.T) {
	cache := newStubCache()
	cache.err = errors.New("redis down")
	pusher := &stubPusher{}

	err := NewPositionRelay(cache, pusher, zerolog.Nop()).HandlePosition(context.Background(), domain.LocationUpdate{ShipmentID: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pusher.frames()) != 1 {
		t.Fatalf("expected push despite cache failure")
	}
}

func TestNotificationRelay_PushesToUser(t *testing.T) {
	pusher := &stubPusher{}
	relay := NewNotificationRelay(pusher, zerolog.Nop())

	err := relay.Handle(context.Background(), domain.StatusNotification{
		UserID: "u5", ShipmentID: 3, NewStatus: domain.StatusDelivered,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	frames := pusher.frames()
	if len(frames) != 1 || frames[0].target != "user-u5" || frames[0].event != domain.PushNotification {
		t.Fatalf("unexpected pushes: %+v", frames)
	}
	if frames[0].payload != "Your shipment (ID: 3) status has been updated to: Delivered." {
		t.Fatalf("unexpected text: %v", frames[0].payload)
	}
}

func TestNotificationRelay_SkipsWithoutReceiver(t *testing.T) {
	pusher := &stubPusher{}
	if err := NewNotificationRelay(pusher, zerolog.Nop()).Handle(context.Background(), domain.StatusNotification{ShipmentID: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pusher.frames()) != 0 {
		t.Fatalf("expected no push")
	}
}

func TestNotificationRelay_PushFailure(t *testing.T) {
	pusher := &stubPusher{err: errors.New("down")}
	err := NewNotificationRelay(pusher, zerolog.Nop()).Handle(context.Background(), domain.StatusNotification{UserID: "u1"})
	if err == nil {
		t.Fatalf("expected error")
	}
}
