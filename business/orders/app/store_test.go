package app_test

import (
	"testing"

	ordersapp "github.com/vantos/triarb/business/orders/app"
	"github.com/vantos/triarb/business/orders/domain"
)

func TestStore_RecordNotification_IndexesByClientID(t *testing.T) {
	s := ordersapp.NewStore()

	if _, ok := s.NotificationForClientID(42); ok {
		t.Fatal("expected no notification recorded yet")
	}

	s.RecordNotification(domain.Notification{Type: "on-req", ClientID: 42, Status: "SUCCESS"})

	n, ok := s.NotificationForClientID(42)
	if !ok {
		t.Fatal("expected a notification recorded for client id 42")
	}
	if n.Status != "SUCCESS" {
		t.Errorf("expected status SUCCESS, got %q", n.Status)
	}
	if _, ok := s.NotificationForClientID(7); ok {
		t.Fatal("expected no notification for an unrelated client id")
	}
}
