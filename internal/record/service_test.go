package record

import (
	"errors"
	"testing"
)

func TestFromInputValid(t *testing.T) {
	s := &Service{}

	r, err := s.fromInput(Input{
		Site:      "Eriosh",
		Motif:     "camel",
		Date:      ptr("2022-03-14"),
		Latitude:  ptr(12.61),
		Longitude: ptr(53.99),
	})
	if err != nil {
		t.Fatalf("fromInput failed: %v", err)
	}
	if r.Site != "Eriosh" || r.Motif != "camel" {
		t.Errorf("unexpected record %+v", r)
	}
	if r.Date == nil || r.Date.Format("2006-01-02") != "2022-03-14" {
		t.Errorf("expected parsed date, got %v", r.Date)
	}
}

func TestFromInputRejects(t *testing.T) {
	s := &Service{}

	cases := []struct {
		name string
		in   Input
	}{
		{"missing site", Input{Motif: "camel"}},
		{"missing motif", Input{Site: "Eriosh"}},
		{"latitude without longitude", Input{Site: "Eriosh", Motif: "camel", Latitude: ptr(12.5)}},
		{"longitude without latitude", Input{Site: "Eriosh", Motif: "camel", Longitude: ptr(54.0)}},
		{"latitude out of range", Input{Site: "Eriosh", Motif: "camel", Latitude: ptr(95.0), Longitude: ptr(54.0)}},
		{"longitude out of range", Input{Site: "Eriosh", Motif: "camel", Latitude: ptr(12.5), Longitude: ptr(190.0)}},
		{"malformed date", Input{Site: "Eriosh", Motif: "camel", Date: ptr("14/03/2022")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := s.fromInput(tc.in); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestFromInputEmptyDateIgnored(t *testing.T) {
	s := &Service{}

	r, err := s.fromInput(Input{Site: "Eriosh", Motif: "camel", Date: ptr("")})
	if err != nil {
		t.Fatalf("fromInput failed: %v", err)
	}
	if r.Date != nil {
		t.Errorf("empty date string should leave the date unset, got %v", r.Date)
	}
}
