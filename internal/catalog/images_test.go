package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"totestore/internal/models"
)

func createWithImages(t *testing.T, s *Service, n int) *models.Product {
	t.Helper()
	in := toteInput()
	for i := 0; i < n; i++ {
		in.UploadedImages = append(in.UploadedImages, png("img.png"))
	}
	p, err := s.Create(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, p.Images, n)
	return p
}

func imageIDs(p *models.Product) []uint {
	out := make([]uint, len(p.Images))
	for i, img := range p.Images {
		out[i] = img.ID
	}
	return out
}

func TestReorderImages(t *testing.T) {
	s, _ := setupService(t)
	p := createWithImages(t, s, 3)
	ids := imageIDs(p)

	got, err := s.ReorderImages(context.Background(), p.ID, []uint{ids[2], ids[0], ids[1]})
	require.NoError(t, err)

	assert.Equal(t, []uint{ids[2], ids[0], ids[1]}, imageIDs(got))
	for i, img := range got.Images {
		assert.Equal(t, uint(i), img.Order)
	}
	assert.Equal(t, uint(2), got.Version)
}

func TestReorderImagesRejectsBadIDs(t *testing.T) {
	s, _ := setupService(t)
	ctx := context.Background()
	p := createWithImages(t, s, 2)
	other := createWithImages(t, s, 1)
	ids := imageIDs(p)

	tests := map[string][]uint{
		"empty":         nil,
		"duplicate":     {ids[0], ids[0]},
		"other product": {ids[0], other.Images[0].ID},
		"unknown":       {ids[1], 12345},
	}
	for name, list := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := s.ReorderImages(ctx, p.ID, list)
			assert.True(t, IsValidation(err), err)
		})
	}

	got, err := s.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, ids, imageIDs(got))
	assert.Equal(t, uint(1), got.Version)
}

func TestReorderImagesUnknownProduct(t *testing.T) {
	s, _ := setupService(t)

	_, err := s.ReorderImages(context.Background(), 99, []uint{1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateImage(t *testing.T) {
	s, _ := setupService(t)
	ctx := context.Background()

	in := toteInput()
	in.UploadedImages = []ImageUpload{png("a.png"), png("b.png")}
	in.ImageColors = []string{"RED", "BLUE"}
	p, err := s.Create(ctx, in)
	require.NoError(t, err)
	first := p.Images[0].ID

	got, err := s.UpdateImage(ctx, p.ID, first, ImageInput{IsFeatured: ptr(true), Color: str("white")})
	require.NoError(t, err)
	require.Len(t, got.Images, 2)
	assert.True(t, got.Images[0].IsFeatured)
	assert.Equal(t, []string{"WHITE", "BLUE"}, colorsOf(got))
	assert.Equal(t, uint(2), got.Version)

	got, err = s.UpdateImage(ctx, p.ID, first, ImageInput{Color: str(""), IsFeatured: ptr(false)})
	require.NoError(t, err)
	assert.Nil(t, got.Images[0].Color)
	assert.False(t, got.Images[0].IsFeatured)
	assert.Equal(t, uint(3), got.Version)
}

func TestUpdateImageErrors(t *testing.T) {
	s, _ := setupService(t)
	ctx := context.Background()
	p := createWithImages(t, s, 1)
	other := createWithImages(t, s, 1)

	_, err := s.UpdateImage(ctx, p.ID, other.Images[0].ID, ImageInput{IsFeatured: ptr(true)})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.UpdateImage(ctx, 999, p.Images[0].ID, ImageInput{IsFeatured: ptr(true)})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.UpdateImage(ctx, p.ID, p.Images[0].ID, ImageInput{Color: str("PINK")})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "color", ve.Field)

	_, err = s.UpdateImage(ctx, p.ID, p.Images[0].ID, ImageInput{})
	assert.True(t, IsValidation(err))
}
