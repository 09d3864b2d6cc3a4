//go:build unit

package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"go-news-app/internal/apperr"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type mockS3Client struct {
	objects     map[string][]byte
	types       map[string]string
	putErr      error
	putCalls    int
	deleteCalls int
}

func newMockS3Client() *mockS3Client {
	return &mockS3Client{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *mockS3Client) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	m.putCalls++
	if m.putErr != nil {
		return nil, m.putErr
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	m.objects[aws.ToString(in.Key)] = b
	m.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	b, ok := m.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(b))}, nil
}

func (m *mockS3Client) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	m.deleteCalls++
	delete(m.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Backend_StoreOpenDelete(t *testing.T) {
	client := newMockS3Client()
	m := NewManager(NewS3BackendWithClient(client, "news-media"), "/article-images/")
	ctx := context.Background()

	p, err := m.Store(ctx, pngBytes, "chart.png")
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if client.putCalls != 1 {
		t.Errorf("expected 1 PutObject call, got %d", client.putCalls)
	}
	if client.types[p] != "image/png" {
		t.Errorf("expected content type image/png, got %q", client.types[p])
	}

	rc, err := m.Open(ctx, p)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	got, _ := io.ReadAll(rc)
	rc.Close()
	if !bytes.Equal(got, pngBytes) {
		t.Error("downloaded content mismatch")
	}

	if err := m.Delete(ctx, p); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := m.Open(ctx, p); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := m.Delete(ctx, p); err != nil {
		t.Errorf("expected repeated delete to succeed, got %v", err)
	}
}

func TestS3Backend_PutFailure(t *testing.T) {
	client := newMockS3Client()
	client.putErr = errors.New("access denied")
	m := NewManager(NewS3BackendWithClient(client, "news-media"), "article-images")

	_, err := m.Store(context.Background(), pngBytes, "chart.png")
	if !errors.Is(err, apperr.ErrMediaWrite) {
		t.Fatalf("expected ErrMediaWrite, got %v", err)
	}
	if len(client.objects) != 0 {
		t.Error("expected no stored objects")
	}
}
