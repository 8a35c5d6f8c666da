package kv_test

import (
	"context"
	"errors"
	"testing"

	"github.com/bigkaa/odontoforense/internal/kv"
)

// brokenBackend — backend, всегда возвращающий ошибку.
type brokenBackend struct{}

func (brokenBackend) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("conexão recusada")
}
func (brokenBackend) Set(context.Context, string, string) error { return errors.New("conexão recusada") }
func (brokenBackend) Remove(context.Context, string) error      { return errors.New("conexão recusada") }

func TestReadinessChecker(t *testing.T) {
	ok := kv.NewReadinessChecker(kv.NewMemory(), "memory")
	if ok.Name() != "store_memory" {
		t.Errorf("Name() = %q", ok.Name())
	}
	if status, _ := ok.CheckReady(context.Background()); status != "ok" {
		t.Errorf("memory: status = %q", status)
	}

	fail := kv.NewReadinessChecker(brokenBackend{}, "s3")
	if status, msg := fail.CheckReady(context.Background()); status != "fail" || msg == "" {
		t.Errorf("broken: status = %q, message = %q", status, msg)
	}
}
