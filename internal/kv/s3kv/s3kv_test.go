package s3kv

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/bigkaa/odontoforense/internal/kv/kvtest"
)

// fakeS3 — in-memory реализация API для тестов.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]string
	// getErr — принудительная ошибка GetObject
	getErr error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string]string)}
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	v, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("not found")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(v))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = string(data)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestStore_Contract(t *testing.T) {
	kvtest.RunContract(t, NewWithClient(newFakeS3(), "bucket", "of/"))
}

func TestStore_ObjectKey(t *testing.T) {
	s := NewWithClient(newFakeS3(), "bucket", "data/")
	if got := s.ObjectKey("odontoforense:casos"); got != "data/odontoforense/casos.json" {
		t.Errorf("ObjectKey() = %q", got)
	}
}

func TestStore_WritesUnderPrefix(t *testing.T) {
	fake := newFakeS3()
	s := NewWithClient(fake, "bucket", "p/")
	if err := s.Set(context.Background(), "odontoforense:vitimas", `[]`); err != nil {
		t.Fatalf("Set() вернул ошибку: %v", err)
	}
	if _, ok := fake.objects["bucket/p/odontoforense/vitimas.json"]; !ok {
		t.Errorf("объект не найден по ожидаемому ключу: %v", fake.objects)
	}
}

func TestStore_GetGenericNotFoundCode(t *testing.T) {
	fake := newFakeS3()
	fake.getErr = &smithy.GenericAPIError{Code: "NotFound", Message: "missing"}
	s := NewWithClient(fake, "bucket", "")

	_, ok, err := s.Get(context.Background(), "k")
	if err != nil || ok {
		t.Errorf("Get() = ok=%v err=%v, ожидалось отсутствие без ошибки", ok, err)
	}
}

func TestStore_GetPropagatesOtherErrors(t *testing.T) {
	fake := newFakeS3()
	fake.getErr = errors.New("connection reset")
	s := NewWithClient(fake, "bucket", "")

	if _, _, err := s.Get(context.Background(), "k"); err == nil {
		t.Error("ожидалась ошибка")
	}
}

func TestNew_RequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatal("ожидалась ошибка без бакета")
	}
}

func TestNew_StaticCredentials(t *testing.T) {
	s, err := New(context.Background(), Config{
		Bucket:          "bucket",
		Endpoint:        "http://localhost:9000",
		PathStyle:       true,
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
	})
	if err != nil {
		t.Fatalf("New() вернул ошибку: %v", err)
	}
	if s.bucket != "bucket" {
		t.Errorf("bucket = %q", s.bucket)
	}
}
