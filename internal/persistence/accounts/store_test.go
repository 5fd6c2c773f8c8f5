package accounts

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"realmgate.io/internal/sim/model"
	"realmgate.io/internal/sim/slots"
)

func openTest(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "accounts.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	s.SetCost(bcrypt.MinCost)
	return s, path
}

func TestStore_RegisterVerify(t *testing.T) {
	s, _ := openTest(t)
	defer s.Close()

	if ok, err := s.Exists("ann"); err != nil || ok {
		t.Fatalf("Exists before register = %v, %v", ok, err)
	}
	if err := s.Register("ann", "hunter2", "ann@example.com"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if ok, _ := s.Exists("ann"); !ok {
		t.Fatalf("Exists after register = false")
	}
	if err := s.Register("ann", "other", ""); !errors.Is(err, ErrExists) {
		t.Fatalf("second Register err = %v, want ErrExists", err)
	}

	cases := []struct {
		user, pw string
		want     bool
	}{
		{"ann", "hunter2", true},
		{"ann", "hunter3", false},
		{"bob", "hunter2", false},
	}
	for _, c := range cases {
		ok, err := s.Verify(c.user, c.pw)
		if err != nil {
			t.Fatalf("Verify(%s): %v", c.user, err)
		}
		if ok != c.want {
			t.Fatalf("Verify(%s,%s) = %v, want %v", c.user, c.pw, ok, c.want)
		}
	}
}

func TestStore_PlayerSaveSurvivesReopen(t *testing.T) {
	s, path := openTest(t)

	if _, found, err := s.LoadPlayer("ann"); err != nil || found {
		t.Fatalf("LoadPlayer before save = %v, %v", found, err)
	}
	save := model.PlayerSave{
		Username:  "ann",
		Pos:       model.Pos{X: 7, Y: 9},
		HitPoints: 12,
		Inventory: []slots.Slot{{ItemID: 9, Count: 3}},
		SavedAt:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := s.SavePlayer(save); err != nil {
		t.Fatalf("SavePlayer: %v", err)
	}
	if err := s.SavePlayer(model.PlayerSave{}); err == nil {
		t.Fatalf("SavePlayer without username should fail")
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	got, found, err := s.LoadPlayer("ann")
	if err != nil || !found {
		t.Fatalf("LoadPlayer = %v, %v", found, err)
	}
	if got.Pos != save.Pos || got.HitPoints != 12 || len(got.Inventory) != 1 || got.Inventory[0].Count != 3 {
		t.Fatalf("save = %+v", got)
	}
	if !got.SavedAt.Equal(save.SavedAt) {
		t.Fatalf("saved_at = %v", got.SavedAt)
	}
	if _, players, err := s.Count(); err != nil || players != 1 {
		t.Fatalf("Count players = %d, %v", players, err)
	}
}
