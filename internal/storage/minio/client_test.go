package minio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	minioLib "github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeObjectAPI implements objectAPI for testing without network.
type fakeObjectAPI struct {
	bucketExists    bool
	bucketExistsErr error
	makeBucketErr   error

	putInfo minioLib.UploadInfo
	putErr  error

	getRC  io.ReadCloser
	getErr error

	removeErr error

	statInfo minioLib.ObjectInfo
	statErr  error

	lastKey string
}

func (f *fakeObjectAPI) BucketExists(_ context.Context, _ string) (bool, error) {
	return f.bucketExists, f.bucketExistsErr
}

func (f *fakeObjectAPI) MakeBucket(_ context.Context, _ string, _ minioLib.MakeBucketOptions) error {
	return f.makeBucketErr
}

func (f *fakeObjectAPI) PutObject(_ context.Context, _ string, objectName string, _ io.Reader, _ int64, _ minioLib.PutObjectOptions) (minioLib.UploadInfo, error) {
	f.lastKey = objectName
	return f.putInfo, f.putErr
}

func (f *fakeObjectAPI) GetObject(_ context.Context, _ string, objectName string, _ minioLib.GetObjectOptions) (io.ReadCloser, error) {
	f.lastKey = objectName
	return f.getRC, f.getErr
}

func (f *fakeObjectAPI) RemoveObject(_ context.Context, _ string, objectName string, _ minioLib.RemoveObjectOptions) error {
	f.lastKey = objectName
	return f.removeErr
}

func (f *fakeObjectAPI) StatObject(_ context.Context, _ string, objectName string, _ minioLib.StatObjectOptions) (minioLib.ObjectInfo, error) {
	f.lastKey = objectName
	return f.statInfo, f.statErr
}

func TestNewAttachmentStore_BucketExists(t *testing.T) {
	ctx := context.Background()
	api := &fakeObjectAPI{bucketExists: true}
	s, err := newAttachmentStore(ctx, api, "attachments")
	require.NoError(t, err)
	assert.NotNil(t, s)
	assert.Equal(t, "attachments", s.bucket)
}

func TestNewAttachmentStore_CreatesBucket(t *testing.T) {
	ctx := context.Background()
	api := &fakeObjectAPI{bucketExists: false}
	s, err := newAttachmentStore(ctx, api, "attachments")
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestNewAttachmentStore_BucketExistsError(t *testing.T) {
	ctx := context.Background()
	api := &fakeObjectAPI{bucketExistsErr: errors.New("boom")}
	s, err := newAttachmentStore(ctx, api, "attachments")
	assert.Nil(t, s)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ensure bucket exists")
}

func TestNewAttachmentStore_MakeBucketError(t *testing.T) {
	ctx := context.Background()
	api := &fakeObjectAPI{bucketExists: false, makeBucketErr: errors.New("fail")}
	s, err := newAttachmentStore(ctx, api, "attachments")
	assert.Nil(t, s)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ensure bucket exists")
}

func TestAttachmentStore_Upload(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		api := &fakeObjectAPI{}
		s := &AttachmentStore{api: api, bucket: "b"}
		err := s.Upload(ctx, "attachments/1", bytes.NewReader([]byte("sealed")))
		assert.NoError(t, err)
		assert.Equal(t, "attachments/1", api.lastKey)
	})

	t.Run("error", func(t *testing.T) {
		api := &fakeObjectAPI{putErr: errors.New("put-fail")}
		s := &AttachmentStore{api: api, bucket: "b"}
		err := s.Upload(ctx, "attachments/1", bytes.NewReader([]byte("sealed")))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to upload object")
	})
}

func TestAttachmentStore_Download(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		api := &fakeObjectAPI{getRC: io.NopCloser(bytes.NewReader([]byte("abc")))}
		s := &AttachmentStore{api: api, bucket: "b"}
		rc, err := s.Download(ctx, "k")
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, []byte("abc"), data)
	})

	t.Run("error", func(t *testing.T) {
		api := &fakeObjectAPI{getErr: errors.New("get-fail")}
		s := &AttachmentStore{api: api, bucket: "b"}
		rc, err := s.Download(ctx, "k")
		assert.Nil(t, rc)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get object")
	})
}

func TestAttachmentStore_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		api := &fakeObjectAPI{}
		s := &AttachmentStore{api: api, bucket: "b"}
		assert.NoError(t, s.Delete(ctx, "k"))
	})

	t.Run("error", func(t *testing.T) {
		api := &fakeObjectAPI{removeErr: errors.New("remove-fail")}
		s := &AttachmentStore{api: api, bucket: "b"}
		err := s.Delete(ctx, "k")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to delete object")
	})
}

func TestAttachmentStore_Exists(t *testing.T) {
	ctx := context.Background()

	t.Run("exists", func(t *testing.T) {
		api := &fakeObjectAPI{}
		s := &AttachmentStore{api: api, bucket: "b"}
		ok, err := s.Exists(ctx, "k")
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("not found", func(t *testing.T) {
		api := &fakeObjectAPI{statErr: minioLib.ErrorResponse{Code: "NoSuchKey"}}
		s := &AttachmentStore{api: api, bucket: "b"}
		ok, err := s.Exists(ctx, "absent")
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("other error", func(t *testing.T) {
		api := &fakeObjectAPI{statErr: errors.New("stat-fail")}
		s := &AttachmentStore{api: api, bucket: "b"}
		ok, err := s.Exists(ctx, "k")
		assert.Error(t, err)
		assert.False(t, ok)
		assert.Contains(t, err.Error(), "failed to stat object")
	})
}
