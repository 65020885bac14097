package service

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"chat-service/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadAndServe(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "1001", "alice")

	info, err := f.files.Upload(alice, "text/plain", []byte("hello world"))
	require.NoError(t, err)
	assert.NotEmpty(t, info.CustomHash)
	assert.EqualValues(t, 11, info.Size)

	file, err := f.files.Resolve(info.CustomHash)
	require.NoError(t, err)
	data, err := f.files.Read(file)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello world"), data)
}

func TestUploadDedupsIdenticalBytes(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "1001", "alice")
	bob := f.user(t, "1002", "bob")

	first, err := f.files.Upload(alice, "text/plain", []byte("same bytes"))
	require.NoError(t, err)
	second, err := f.files.Upload(bob, "text/plain", []byte("same bytes"))
	require.NoError(t, err)

	assert.Equal(t, first.CustomHash, second.CustomHash)

	var count int64
	require.NoError(t, f.db.Model(&model.AppFile{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUploadEmpty(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "1001", "alice")

	_, err := f.files.Upload(alice, "text/plain", nil)
	requireCode(t, err, CodeInvalidOperation)
}

func TestUploadExtractsImageDimensions(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "1001", "alice")

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 12, 8))))

	info, err := f.files.Upload(alice, "image/png", buf.Bytes())
	require.NoError(t, err)
	require.NotNil(t, info.Width)
	require.NotNil(t, info.Height)
	assert.Equal(t, 12, *info.Width)
	assert.Equal(t, 8, *info.Height)
}

func TestResolveUnknownHash(t *testing.T) {
	f := newFixture(t)

	_, err := f.files.Resolve("missing")
	requireCode(t, err, CodeFileNotFound)
}
