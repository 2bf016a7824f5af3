package stunutil

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	if got := Classify([]string{"1.2.3.4:1"}); got != NATTypeUnknown {
		t.Fatalf("got=%q", got)
	}
	if got := Classify([]string{"1.2.3.4:1", "1.2.3.4:1"}); got != NATTypeConeOrRestricted {
		t.Fatalf("got=%q", got)
	}
	if got := Classify([]string{"1.2.3.4:1", "1.2.3.4:2"}); got != NATTypeSymmetric {
		t.Fatalf("got=%q", got)
	}
}

func TestCheck_OneServerIsEnough(t *testing.T) {
	t.Parallel()

	b := func(ctx context.Context, server string) (string, error) {
		if server == "down" {
			return "", errors.New("timeout")
		}
		if _, ok := ctx.Deadline(); !ok {
			t.Errorf("missing per-server deadline")
		}
		return "185.213.154.66:40000", nil
	}
	eg, err := check(context.Background(), []string{"down", "up"}, time.Second, b)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if eg.Addr != "185.213.154.66:40000" || eg.NATType != NATTypeUnknown {
		t.Fatalf("egress=%+v", eg)
	}
}

func TestCheck_AllFail(t *testing.T) {
	t.Parallel()

	b := func(ctx context.Context, server string) (string, error) { return "", errors.New("refused") }
	if _, err := check(context.Background(), []string{"a", "b"}, 0, b); err == nil {
		t.Fatal("expected error")
	}
	if _, err := check(context.Background(), nil, 0, b); err == nil {
		t.Fatal("expected error for empty server list")
	}
}
