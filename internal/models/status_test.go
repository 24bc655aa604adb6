package models

import "testing"

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected Status
	}{
		{"canonical code", "shipped", StatusShipped},
		{"turkish label", "Kontrol Başladı", StatusControlStarted},
		{"turkish label lower case", "kontrol başladı", StatusControlStarted},
		{"dotted capital I", "Yeniden İşlemde", StatusInRework},
		{"extra whitespace", "  Sevk   Edildi ", StatusShipped},
		{"event code alias", "rework_start", StatusInRework},
		{"arge alias", "arge_sent", StatusInArge},
		{"arge label", "Ar-Ge'de", StatusInArge},
		{"waiting label", "Sevk Bilgisi Bekleniyor", StatusWaitingForShippingInfo},
		{"upper case label with dotless i", "KONTROL BAŞLADI", StatusControlStarted},
		{"upper case label with dotted i", "SEVK EDİLDİ", StatusShipped},
		{"upper case rework label", "YENİDEN İŞLEMDE", StatusInRework},
		{"lower case label with plain i", "yeniden işlemde", StatusInRework},
		{"upper case code", "IN_REWORK", StatusInRework},
		{"upper case alias", "CONTROL_START", StatusControlStarted},
		{"unknown", "paused", StatusUnknown},
		{"empty", "", StatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeStatus(tt.raw); got != tt.expected {
				t.Errorf("NormalizeStatus(%q) = %q, want %q", tt.raw, got, tt.expected)
			}
		})
	}
}

func TestStatusForEvent(t *testing.T) {
	for _, et := range EventTypes {
		if StatusForEvent(et) == StatusUnknown {
			t.Errorf("event %s has no target status", et)
		}
	}
	if StatusForEvent("bogus") != StatusUnknown {
		t.Errorf("expected unknown status for invalid event type")
	}
}

func TestStatusLabelsRoundTrip(t *testing.T) {
	for _, s := range Statuses {
		label := s.Label()
		if label == "" {
			t.Errorf("status %s has no label", s)
			continue
		}
		if got := NormalizeStatus(label); got != s {
			t.Errorf("NormalizeStatus(%q) = %q, want %q", label, got, s)
		}
	}
}

func TestIsValidEventType(t *testing.T) {
	if !IsValidEventType(EventControlStart) {
		t.Errorf("control_start should be valid")
	}
	if IsValidEventType("control_pause") {
		t.Errorf("control_pause should be invalid")
	}
}

func TestVehicle_OpenReworkCycle(t *testing.T) {
	v := &Vehicle{}
	if idx := v.OpenReworkCycle(); idx != -1 {
		t.Errorf("expected -1 for no cycles, got %d", idx)
	}

	v.ReworkCycles = []ReworkCycle{
		{StartedAt: "2024-01-01T08:00:00Z"},
		{StartedAt: "2024-01-02T08:00:00Z", EndedAt: "2024-01-02T09:00:00Z"},
	}
	if idx := v.OpenReworkCycle(); idx != 0 {
		t.Errorf("expected open cycle at 0, got %d", idx)
	}

	v.ReworkCycles[0].EndedAt = "2024-01-01T09:00:00Z"
	if idx := v.OpenReworkCycle(); idx != -1 {
		t.Errorf("expected no open cycle, got %d", idx)
	}
}
