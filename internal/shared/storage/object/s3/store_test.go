package s3

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "staging/file.pdf", want: "staging/file.pdf"},
		{name: "simple prefix", prefix: "root", key: "staging/file.pdf", want: "root/staging/file.pdf"},
		{name: "prefix trailing slash", prefix: "root/", key: "staging/file.pdf", want: "root/staging/file.pdf"},
		{name: "prefix and key slashes", prefix: "/root/", key: "/staging/file.pdf", want: "root/staging/file.pdf"},
		{name: "nested prefix", prefix: "root/sub", key: "staging/file.pdf", want: "root/sub/staging/file.pdf"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

type fakeAPI struct {
	objects map[string][]byte
	put     *s3.PutObjectInput
}

func (f *fakeAPI) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = data
	f.put = in
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeAPI) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(f.objects[aws.ToString(in.Key)]))}, nil
}

func (f *fakeAPI) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestStoreRoundTripUsesPrefix(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{objects: map[string][]byte{}}
	store := NewWithClient(api, "bucket", "/uploads/", "")

	n, err := store.SaveWithKey(ctx, "staging/cv.pdf", "application/pdf", strings.NewReader("pdf-bytes"))
	if err != nil {
		t.Fatalf("SaveWithKey: %v", err)
	}
	if n != int64(len("pdf-bytes")) {
		t.Fatalf("unexpected size %d", n)
	}
	if _, ok := api.objects["uploads/staging/cv.pdf"]; !ok {
		t.Fatalf("expected prefixed key, got %v", api.objects)
	}
	if api.put.ServerSideEncryption != s3types.ServerSideEncryptionAes256 {
		t.Fatalf("expected AES256 encryption without kms key, got %s", api.put.ServerSideEncryption)
	}

	rc, err := store.Open(ctx, "staging/cv.pdf")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, _ := io.ReadAll(rc)
	if string(got) != "pdf-bytes" {
		t.Fatalf("unexpected content %q", got)
	}

	if err := store.Delete(ctx, "staging/cv.pdf"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(api.objects) != 0 {
		t.Fatalf("expected object removed, got %v", api.objects)
	}
}
