package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firstwinagency/firstwinagency-firstwin-panel/pkg/config"
	"github.com/firstwinagency/firstwinagency-firstwin-panel/pkg/domain"
	"github.com/firstwinagency/firstwinagency-firstwin-panel/pkg/pipeline"
)

func TestBuildRequest(t *testing.T) {
	t.Run("exact モードと複数の参照", func(t *testing.T) {
		f, err := parseFlags([]string{
			"-p", "studio shot", "-ref", "https://a/1.png", "-ref", "https://a/2.png",
			"-tier", "v3", "-n", "3", "-seed", "5",
			"-mode", "exact", "-width", "1344", "-height", "768", "-format", "webp",
		})
		require.NoError(t, err)

		req, err := buildRequest(f)
		require.NoError(t, err)
		assert.Equal(t, "studio shot", req.PromptText)
		assert.Equal(t, []domain.ReferenceInput{"https://a/1.png", "https://a/2.png"}, req.References)
		assert.Equal(t, domain.TierPro, req.Tier, "旧名 v3 は pro")
		assert.Equal(t, 3, req.OutputCount)
		require.NotNil(t, req.Seed)
		assert.Equal(t, int64(5), *req.Seed)
		assert.Equal(t, domain.Delivery{Mode: domain.ModeExact, Width: 1344, Height: 768, Format: domain.FormatWEBP}, req.Delivery)
	})

	t.Run("既定は square でシードなし", func(t *testing.T) {
		f, err := parseFlags([]string{"-ref", "https://a/1.png", "-fit", "cover"})
		require.NoError(t, err)

		req, err := buildRequest(f)
		require.NoError(t, err)
		assert.Nil(t, req.Seed)
		assert.Equal(t, domain.ModeSquare, req.Delivery.Mode)
		assert.Equal(t, domain.FitCover, req.Delivery.FitMode)
		assert.Equal(t, domain.Tier(""), req.Tier)
	})

	t.Run("不正な値はエラー", func(t *testing.T) {
		for _, args := range [][]string{
			{"-mode", "poster"},
			{"-tier", "ultra"},
			{"-mode", "exact", "-format", "tiff"},
			{"-bg", "teal"},
		} {
			f, err := parseFlags(args)
			require.NoError(t, err)
			_, err = buildRequest(f)
			assert.Error(t, err, "%v", args)
		}
	})
}

func TestWriteResult(t *testing.T) {
	dir := t.TempDir()
	res := &pipeline.Result{
		RunID: "run",
		Canvases: []domain.Canvas{
			{Data: []byte("a"), MimeType: "image/jpeg"},
			{Data: []byte("b"), MimeType: "image/png"},
		},
	}

	require.NoError(t, writeResult(dir, res, newLogger(config.LogConfig{Level: "error"})))

	data, err := os.ReadFile(filepath.Join(dir, "run-1.jpg"))
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), data)
	_, err = os.Stat(filepath.Join(dir, "run-2.png"))
	assert.NoError(t, err)
}
