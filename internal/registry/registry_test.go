package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/vovakirdan/pulsefield/internal/feed"
)

type stubSource struct{ url string }

func (s *stubSource) Run(ctx context.Context, emit func(feed.Event)) error {
	<-ctx.Done()
	return nil
}

func init() {
	Register("zz-test", "Test source", func(opts feed.Options) (feed.Source, error) {
		if opts.URL == "bad" {
			return nil, errors.New("bad url")
		}
		return &stubSource{url: opts.URL}, nil
	})
}

func TestCreate(t *testing.T) {
	src, err := Create("zz-test", feed.Options{URL: "ws://x"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if s, ok := src.(*stubSource); !ok || s.url != "ws://x" {
		t.Errorf("factory did not receive options: %#v", src)
	}
}

func TestCreateErrors(t *testing.T) {
	if _, err := Create("missing", feed.Options{}); err == nil {
		t.Error("expected error for unknown source")
	}
	if _, err := Create("zz-test", feed.Options{URL: "bad"}); err == nil {
		t.Error("expected factory error to be returned")
	}
}

func TestListAndExists(t *testing.T) {
	if !Exists("zz-test") {
		t.Fatal("registered source should exist")
	}
	if Exists("missing") {
		t.Error("unknown source should not exist")
	}

	list := List()
	found := false
	for i, info := range list {
		if i > 0 && list[i-1].ID >= info.ID {
			t.Errorf("list not sorted: %q before %q", list[i-1].ID, info.ID)
		}
		if info.ID == "zz-test" && info.Title == "Test source" {
			found = true
		}
	}
	if !found {
		t.Error("registered source missing from List()")
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	Register("zz-test", "again", nil)
}
