package menu

import "testing"

func TestMarkupShapes(t *testing.T) {
	cases := []struct {
		id      ID
		buttons int
		rows    int
	}{
		{Main, 6, 3},
		{Device, 4, 2},
		{Server, 2, 1},
		{Country, 7, 4},
		{Resolve, 2, 1},
		{Rating, 5, 1},
	}
	for _, tc := range cases {
		m := Markup(tc.id)
		if m == nil {
			t.Fatalf("Markup(%s) = nil", tc.id)
		}
		if len(m.InlineKeyboard) != tc.rows {
			t.Errorf("Markup(%s): %d rows, want %d", tc.id, len(m.InlineKeyboard), tc.rows)
		}
		total := 0
		for _, row := range m.InlineKeyboard {
			total += len(row)
		}
		if total != tc.buttons {
			t.Errorf("Markup(%s): %d buttons, want %d", tc.id, total, tc.buttons)
		}
	}

	if m := Markup(None); m != nil {
		t.Errorf("Markup(None) = %v, want nil", m)
	}
}

func TestFarewellDrawsFromPool(t *testing.T) {
	pool := make(map[string]struct{}, len(FarewellPhrases))
	for _, p := range FarewellPhrases {
		pool[p] = struct{}{}
	}
	for i := 0; i < 100; i++ {
		if _, ok := pool[Farewell()]; !ok {
			t.Fatal("Farewell returned a phrase outside the pool")
		}
	}
}
