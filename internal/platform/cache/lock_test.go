package cache

import (
	"bytes"
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// fakeRedis answers commands in-process so no server is needed.
type fakeRedis struct {
	setNX      bool
	releaseErr error
	commands   []string
}

func (f *fakeRedis) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return nil, errors.New("fake redis does not dial")
	}
}

func (f *fakeRedis) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		f.commands = append(f.commands, cmd.Name())
		switch c := cmd.(type) {
		case *redis.BoolCmd:
			c.SetVal(f.setNX)
		case *redis.Cmd:
			if f.releaseErr != nil {
				c.SetErr(f.releaseErr)
				return f.releaseErr
			}
			c.SetVal(int64(1))
		}
		return nil
	}
}

func (f *fakeRedis) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func newFakeLocker(f *fakeRedis) (Locker, *bytes.Buffer) {
	client := redis.NewClient(&redis.Options{Addr: "fake:6379"})
	client.AddHook(f)
	var buf bytes.Buffer
	return NewRedisSlotLocker(client, time.Minute, zerolog.New(&buf)), &buf
}

var lockKey = SlotKey{StaffID: 2, Date: time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC), SlotID: 5}

func TestRedisSlotLocker_RunsAndReleases(t *testing.T) {
	f := &fakeRedis{setNX: true}
	locker, logs := newFakeLocker(f)

	called := false
	err := locker.WithSlotLock(context.Background(), lockKey, func(ctx context.Context) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("expected fn to run under the lock")
	}
	if len(f.commands) != 2 || f.commands[0] != "set" || f.commands[1] != "evalsha" {
		t.Errorf("expected set then evalsha, got %v", f.commands)
	}
	if logs.Len() != 0 {
		t.Errorf("expected no log output, got %s", logs.String())
	}
}

func TestRedisSlotLocker_Busy(t *testing.T) {
	f := &fakeRedis{setNX: false}
	locker, _ := newFakeLocker(f)

	err := locker.WithSlotLock(context.Background(), lockKey, func(ctx context.Context) error {
		t.Error("fn must not run without the lock")
		return nil
	})
	if !errors.Is(err, ErrLockNotAcquired) {
		t.Errorf("expected ErrLockNotAcquired, got %v", err)
	}
	if len(f.commands) != 1 {
		t.Errorf("expected no release attempt, got %v", f.commands)
	}
}

func TestRedisSlotLocker_LogsFailedRelease(t *testing.T) {
	f := &fakeRedis{setNX: true, releaseErr: errors.New("READONLY You can't write against a read only replica.")}
	locker, logs := newFakeLocker(f)

	err := locker.WithSlotLock(context.Background(), lockKey, func(ctx context.Context) error {
		return nil
	})
	if err != nil {
		t.Fatalf("a failed release must not fail the booking, got %v", err)
	}
	out := logs.String()
	if !strings.Contains(out, "slot lock not released") {
		t.Errorf("expected release failure to be logged, got %q", out)
	}
	if !strings.Contains(out, lockKey.String()) {
		t.Errorf("expected the lock key in the log, got %q", out)
	}
	if !strings.Contains(out, "READONLY") {
		t.Errorf("expected the redis error in the log, got %q", out)
	}
}

func TestRedisSlotLocker_PropagatesFnError(t *testing.T) {
	f := &fakeRedis{setNX: true}
	locker, _ := newFakeLocker(f)
	want := errors.New("slot taken")

	err := locker.WithSlotLock(context.Background(), lockKey, func(ctx context.Context) error {
		return want
	})
	if !errors.Is(err, want) {
		t.Errorf("expected fn error, got %v", err)
	}
	if len(f.commands) != 2 {
		t.Errorf("expected the lock to be released after a failed fn, got %v", f.commands)
	}
}
