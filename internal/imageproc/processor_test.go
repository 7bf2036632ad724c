package imageproc

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "imagevault/internal/errors"
)

func solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodeStored(t *testing.T, p *Processed) (image.Image, string) {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(p.Data)
	require.NoError(t, err)
	assert.Equal(t, p.Size, len(raw))
	img, format, err := image.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	return img, format
}

func TestProcess_RejectsDisallowedTypes(t *testing.T) {
	valid := encodeJPEG(t, solid(10, 10, color.White))
	for _, ct := range []string{"image/bmp", "image/tiff", "text/plain", "IMAGE/JPEG", "image/svg+xml", ""} {
		t.Run(ct, func(t *testing.T) {
			out, err := NewProcessor().Process(valid, ct)
			assert.Nil(t, out)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidFileType))
		})
	}
}

func TestProcess_RejectsOversizedBeforeDecoding(t *testing.T) {
	data := make([]byte, MaxUploadSize+1)
	copy(data, encodeJPEG(t, solid(10, 10, color.White)))

	out, err := NewProcessor().Process(data, "image/jpeg")
	assert.Nil(t, out)
	assert.True(t, errors.Is(err, apperrors.ErrFileTooLarge))
	assert.False(t, errors.Is(err, apperrors.ErrInvalidImageFile))
}

func TestProcess_ExactlyAtLimitIsNotTooLarge(t *testing.T) {
	data := make([]byte, MaxUploadSize)

	_, err := NewProcessor().Process(data, "image/png")
	assert.False(t, errors.Is(err, apperrors.ErrFileTooLarge))
	assert.True(t, errors.Is(err, apperrors.ErrInvalidImageFile))
}

func TestProcess_MalformedBytes(t *testing.T) {
	out, err := NewProcessor().Process([]byte("definitely not an image"), "image/png")
	assert.Nil(t, out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidImageFile))

	var imgErr *apperrors.ImageError
	require.True(t, errors.As(err, &imgErr))
	assert.NotNil(t, imgErr.Cause)
	assert.Contains(t, err.Error(), "invalid image file: ")
}

// pngHeaderOnly returns a PNG whose IHDR declares w×h grayscale pixels
// followed by a tiny IDAT, far too short for the declared size.
func pngHeaderOnly(w, h uint32) []byte {
	chunk := func(buf *bytes.Buffer, typ string, data []byte) {
		_ = binary.Write(buf, binary.BigEndian, uint32(len(data)))
		body := append([]byte(typ), data...)
		buf.Write(body)
		_ = binary.Write(buf, binary.BigEndian, crc32.ChecksumIEEE(body))
	}

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 0 // grayscale
	chunk(&buf, "IHDR", ihdr)
	chunk(&buf, "IDAT", []byte{0x78, 0x9c, 0x63, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01})
	chunk(&buf, "IEND", nil)
	return buf.Bytes()
}

func TestProcess_RejectsOversizedDimensionsBeforeDecoding(t *testing.T) {
	tests := []struct {
		name string
		w, h uint32
	}{
		{name: "20000x20000", w: 20000, h: 20000},
		{name: "max png dimensions", w: 65535, h: 65535},
		{name: "just over the pixel cap", w: MaxPixels/10000 + 1, h: 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := pngHeaderOnly(tt.w, tt.h)
			require.Less(t, len(data), 200)

			out, err := NewProcessor().Process(data, "image/png")
			assert.Nil(t, out)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidImageFile))
			assert.Contains(t, err.Error(), "exceeds limit")
		})
	}
}

func TestProcess_Downscale(t *testing.T) {
	tests := []struct {
		name  string
		w, h  int
		wantW int
		wantH int
	}{
		{name: "wide", w: 3000, h: 1000, wantW: 1920, wantH: 640},
		{name: "tall", w: 1000, h: 2000, wantW: 540, wantH: 1080},
		{name: "both over", w: 2400, h: 1600, wantW: 1620, wantH: 1080},
		{name: "both over wider than bound", w: 4000, h: 2000, wantW: 1920, wantH: 960},
		{name: "within bounds", w: 800, h: 600, wantW: 800, wantH: 600},
		{name: "exact bound", w: 1920, h: 1080, wantW: 1920, wantH: 1080},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := encodeJPEG(t, solid(tt.w, tt.h, color.RGBA{R: 200, A: 255}))

			out, err := NewProcessor().Process(data, "image/jpeg")
			require.NoError(t, err)
			assert.Equal(t, tt.wantW, out.Width)
			assert.Equal(t, tt.wantH, out.Height)

			img, format := decodeStored(t, out)
			assert.Equal(t, "jpeg", format)
			assert.LessOrEqual(t, img.Bounds().Dx(), MaxWidth)
			assert.LessOrEqual(t, img.Bounds().Dy(), MaxHeight)
			assert.Equal(t, tt.wantW, img.Bounds().Dx())
			assert.Equal(t, tt.wantH, img.Bounds().Dy())
		})
	}
}

func TestProcess_FlattensAlpha(t *testing.T) {
	// set pixels directly; drawing would premultiply the color away
	src := image.NewNRGBA(image.Rect(0, 0, 20, 20))
	for i := 0; i < len(src.Pix); i += 4 {
		copy(src.Pix[i:i+4], []uint8{10, 20, 30, 0})
	}
	data := encodePNG(t, src)

	out, err := NewProcessor().Process(data, "image/png")
	require.NoError(t, err)

	img, format := decodeStored(t, out)
	assert.Equal(t, "png", format)
	_, _, _, a := img.At(5, 5).RGBA()
	assert.Equal(t, uint32(0xffff), a)
	r, g, b, _ := img.At(5, 5).RGBA()
	assert.Equal(t, uint32(10), r>>8)
	assert.Equal(t, uint32(20), g>>8)
	assert.Equal(t, uint32(30), b>>8)
}

func TestProcess_ReencodesGIF(t *testing.T) {
	pal := image.NewPaletted(image.Rect(0, 0, 30, 30), color.Palette{color.Black, color.White})
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, pal, nil))

	out, err := NewProcessor().Process(buf.Bytes(), "image/gif")
	require.NoError(t, err)

	_, format := decodeStored(t, out)
	assert.Equal(t, "gif", format)
}

func TestProcess_WebPFallsBackToJPEG(t *testing.T) {
	// declared type selects the encoder, not the payload
	data := encodePNG(t, solid(16, 16, color.White))

	out, err := NewProcessor().Process(data, "image/webp")
	require.NoError(t, err)

	_, format := decodeStored(t, out)
	assert.Equal(t, "jpeg", format)
}

func TestProcess_DeclaredTypeIgnoresPayloadFormat(t *testing.T) {
	data := encodeJPEG(t, solid(16, 16, color.White))

	out, err := NewProcessor().Process(data, "image/png")
	require.NoError(t, err)

	_, format := decodeStored(t, out)
	assert.Equal(t, "png", format)
}

func TestIsAllowed(t *testing.T) {
	for _, ct := range AllowedContentTypes {
		assert.True(t, IsAllowed(ct), ct)
	}
	assert.False(t, IsAllowed("image/Jpeg"))
}
