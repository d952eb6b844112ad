package models

import "testing"

func TestParseFormatSettings(t *testing.T) {
	raw := `{"double_round_robin":true,"group_legs_to_win":3,"knockout_legs_to_win":{"1":4,"3":6}}`
	s, err := ParseFormatSettings(&raw)
	if err != nil {
		t.Fatalf("ParseFormatSettings: %v", err)
	}
	if !s.DoubleRoundRobin || s.GroupLegsToWin != 3 {
		t.Errorf("got %+v", s)
	}
	rounds := s.KnockoutRounds()
	if rounds[1] != 4 || rounds[3] != 6 || len(rounds) != 2 {
		t.Errorf("got knockout rounds %v", rounds)
	}

	out, err := s.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	again, err := ParseFormatSettings(out)
	if err != nil || again.KnockoutRounds()[3] != 6 {
		t.Errorf("settings did not survive a round trip: %v %+v", err, again)
	}
}

func TestParseFormatSettingsDefaults(t *testing.T) {
	empty := ""
	for _, raw := range []*string{nil, &empty} {
		s, err := ParseFormatSettings(raw)
		if err != nil {
			t.Fatalf("ParseFormatSettings: %v", err)
		}
		if s.DoubleRoundRobin || s.GroupLegsToWin != 0 || len(s.KnockoutLegsToWin) != 0 {
			t.Errorf("got %+v; want defaults", s)
		}
	}
}

func TestParseFormatSettingsRejectsBadValues(t *testing.T) {
	for _, raw := range []string{
		`{"group_legs_to_win":-1}`,
		`{"knockout_legs_to_win":{"final":3}}`,
		`{"knockout_legs_to_win":{"0":3}}`,
		`{"knockout_legs_to_win":{"2":0}}`,
		`not json`,
	} {
		if _, err := ParseFormatSettings(&raw); err == nil {
			t.Errorf("%s: expected an error", raw)
		}
	}
}
