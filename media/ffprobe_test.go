package media

import (
	"context"
	"errors"
	"testing"
)

func stubProbe(output string, err error) *Probe {
	p := NewProbe("")
	p.run = func(context.Context, string, ...string) ([]byte, error) {
		return []byte(output), err
	}
	return p
}

func TestDurationFromFormat(t *testing.T) {
	p := stubProbe(`{"format":{"duration":"12.480000"},"streams":[{"codec_type":"audio","duration":"12.4"}]}`, nil)
	d, err := p.Duration(context.Background(), "http://studio.test/blobs/a")
	if err != nil {
		t.Fatalf("Duration: %v", err)
	}
	if d != 12.48 {
		t.Fatalf("duration = %v", d)
	}
}

func TestDurationFallsBackToAudioStream(t *testing.T) {
	p := stubProbe(`{"format":{"duration":"N/A"},"streams":[{"codec_type":"video","duration":"99"},{"codec_type":"audio","duration":"3.5"}]}`, nil)
	d, err := p.Duration(context.Background(), "file.mp3")
	if err != nil || d != 3.5 {
		t.Fatalf("Duration = %v, %v", d, err)
	}
}

func TestDurationErrors(t *testing.T) {
	cases := []struct {
		name   string
		probe  *Probe
		target string
	}{
		{"empty target", stubProbe("{}", nil), " "},
		{"exec failure", stubProbe("No such file", errors.New("exit status 1")), "x.mp3"},
		{"bad json", stubProbe("not json", nil), "x.mp3"},
		{"no duration", stubProbe(`{"format":{}}`, nil), "x.mp3"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.probe.Duration(context.Background(), tc.target); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
