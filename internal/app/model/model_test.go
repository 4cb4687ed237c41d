package model

import (
	"encoding/json"
	"github.com/google/uuid"
	"strings"
	"testing"
	"time"
)

func TestCursorRoundTrip(t *testing.T) {
	c := Cursor{
		CreatedAt: time.Date(2024, 3, 1, 10, 0, 0, 123456000, time.UTC),
		ID:        uuid.New(),
	}

	got, err := ParseCursor(c.String())
	if err != nil {
		t.Fatal(err)
	}
	if !got.CreatedAt.Equal(c.CreatedAt) || got.ID != c.ID {
		t.Errorf("ParseCursor() = %+v, want %+v", got, c)
	}

	for _, bad := range []string{"", "2024-03-01T10:00:00Z", "nope|" + c.ID.String(), "2024-03-01T10:00:00Z|x"} {
		if _, err := ParseCursor(bad); err == nil {
			t.Errorf("ParseCursor(%q) expected error", bad)
		}
	}
}

func TestEnumsRejectUnknown(t *testing.T) {
	var d Direction
	if err := d.Scan("SIDEWAYS"); err == nil {
		t.Error("unknown direction accepted")
	}
	if err := d.Scan([]byte("DEBIT")); err != nil || d != DirectionDebit {
		t.Errorf("Scan(DEBIT) = %v, %v", d, err)
	}

	var s Status
	if err := json.Unmarshal([]byte(`"DONE"`), &s); err == nil {
		t.Error("unknown status accepted")
	}
	if _, err := ReferenceType("GIFT").Value(); err == nil {
		t.Error("unknown reference type written")
	}
	if !StatusFailed.Terminal() || StatusPending.Terminal() {
		t.Error("terminal states wrong")
	}
}

func TestMetadataScanValue(t *testing.T) {
	in := Metadata{
		Transfer: &TransferInfo{GroupID: "g1", CounterpartUserID: uuid.New()},
		Extra:    map[string]interface{}{"channel": "mobile"},
	}

	v, err := in.Value()
	if err != nil {
		t.Fatal(err)
	}

	var out Metadata
	if err := out.Scan([]byte(v.(string))); err != nil {
		t.Fatal(err)
	}
	if out.Transfer == nil || out.Transfer.GroupID != "g1" || out.Extra["channel"] != "mobile" {
		t.Errorf("Scan() = %+v", out)
	}

	if err := out.Scan(nil); err != nil || out.Transfer != nil {
		t.Errorf("Scan(nil) = %+v, %v", out, err)
	}
}

func TestTransactionJSON(t *testing.T) {
	tx := Transaction{
		Direction:     DirectionCredit,
		Status:        StatusCompleted,
		Amount:        100000,
		BalanceAfter:  70050,
		ReferenceType: ReferenceAdjustment,
	}

	b, err := json.Marshal(tx)
	if err != nil {
		t.Fatal(err)
	}
	s := string(b)
	if !strings.Contains(s, `"amount":"1000.00"`) || !strings.Contains(s, `"balance_after":"700.50"`) {
		t.Errorf("unexpected json %s", s)
	}
}
