// Package fingerprint derives universal identifiers for documents whose
// business fields could not be resolved.
//
// Text wins over pixels, pixels win over bytes. The file size and type never
// enter the hash, so lossless re-encodings of one image share an identifier.
package fingerprint

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"log/slog"
	"math/bits"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/bmp"  // Register BMP decoder
	_ "golang.org/x/image/tiff" // Register TIFF decoder
	_ "golang.org/x/image/webp" // Register WEBP decoder

	"github.com/joseph-ayodele/docid/constants"
	"github.com/joseph-ayodele/docid/internal/canon"
	"github.com/joseph-ayodele/docid/internal/common"
	"github.com/joseph-ayodele/docid/internal/extract"
	"github.com/joseph-ayodele/docid/internal/identity"
)

const (
	// FingerprintVersion is folded into visual and byte hashes. Bump it when
	// CanonicalSize, the resampler or the histogram layout change.
	FingerprintVersion = "v1"

	DefaultPrefix = "UNIV"

	// CanonicalSize is the side of the square every image is resampled to.
	CanonicalSize = 64

	bucketsPerChannel = 4
	histogramBins     = bucketsPerChannel * bucketsPerChannel * bucketsPerChannel
)

// Fingerprint is a universal identifier plus the sub-path that produced it.
type Fingerprint struct {
	ID     identity.Identifier `json:"id"`
	Method string              `json:"method"` // constants.UniversalText, UniversalVisual or UniversalBytes
}

type Fingerprinter struct {
	prefix string
	logger *slog.Logger
}

func New(prefix string, logger *slog.Logger) *Fingerprinter {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fingerprinter{prefix: prefix, logger: logger}
}

// Prefix returns the configured identifier prefix.
func (f *Fingerprinter) Prefix() string { return f.prefix }

// Generate returns the universal identifier of raw.
func (f *Fingerprinter) Generate(ctx context.Context, raw extract.RawContent) (identity.Identifier, error) {
	fp, err := f.Fingerprint(ctx, raw)
	if err != nil {
		return identity.Identifier{}, err
	}
	return fp.ID, nil
}

// Fingerprint is Generate that also reports which sub-path was taken.
func (f *Fingerprinter) Fingerprint(ctx context.Context, raw extract.RawContent) (Fingerprint, error) {
	if err := ctx.Err(); err != nil {
		return Fingerprint{}, err
	}

	if text := CanonicalText(raw.Text); text != "" {
		return f.result(raw.Format.UniversalCode(), identity.Digest(text), constants.UniversalText), nil
	}

	if pixels := visualSource(raw); pixels != nil {
		digest, err := VisualDigest(pixels)
		if err == nil {
			return f.result("IMG", digest, constants.UniversalVisual), nil
		}
		if raw.Format.IsImage() {
			f.logger.Error("failed to decode image", "format", raw.Format, "error", err)
			return Fingerprint{}, common.ExtractionError(string(raw.Format)+" image", err)
		}
		f.logger.Warn("rendered page not decodable, using file bytes", "error", err)
	}

	sum := raw.Digest
	if sum == "" {
		if raw.Data == nil {
			return Fingerprint{}, common.InvalidInputError("raw content carries neither text nor a digest", nil)
		}
		h := sha256.Sum256(raw.Data)
		sum = hex.EncodeToString(h[:])
	}
	return f.result(raw.Format.UniversalCode(), identity.DigestParts(FingerprintVersion, sum), constants.UniversalBytes), nil
}

func (f *Fingerprinter) result(code, digest, method string) Fingerprint {
	id := identity.Identifier{Prefix: f.prefix, ClassCode: code, Digest: digest}
	f.logger.Debug("universal identifier generated", "id", id.String(), "method", method)
	return Fingerprint{ID: id, Method: method}
}

// CanonicalText is the whole-document text form hashed on the text path.
func CanonicalText(s string) string {
	return canon.Text(s)
}

func visualSource(raw extract.RawContent) []byte {
	if raw.Format.IsImage() && len(raw.Data) > 0 {
		return raw.Data
	}
	if len(raw.Raster) > 0 {
		return raw.Raster
	}
	return nil
}

// VisualDigest decodes an encoded image and returns the 16-character visual
// digest: pixels and colour histogram of the 64x64 canonical rendition.
func VisualDigest(data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	if img.Bounds().Empty() {
		return "", fmt.Errorf("decode image: empty bounds")
	}

	small := Canonical(img)
	pixels := sha256.New()
	var hist [histogramBins]uint32
	rgb := make([]byte, 0, CanonicalSize*3)
	for y := 0; y < CanonicalSize; y++ {
		rgb = rgb[:0]
		row := small.Pix[y*small.Stride : y*small.Stride+CanonicalSize*4]
		for x := 0; x < len(row); x += 4 {
			r, g, b := row[x], row[x+1], row[x+2]
			rgb = append(rgb, r, g, b)
			hist[bucket(r)*bucketsPerChannel*bucketsPerChannel+bucket(g)*bucketsPerChannel+bucket(b)]++
		}
		pixels.Write(rgb)
	}

	counts := make([]byte, 4*histogramBins)
	for i, c := range hist {
		binary.BigEndian.PutUint32(counts[i*4:], c)
	}
	histSum := sha256.Sum256(counts)

	return identity.DigestParts(
		FingerprintVersion,
		hex.EncodeToString(pixels.Sum(nil)),
		hex.EncodeToString(histSum[:]),
	), nil
}

// Canonical composites img onto white and resamples it to CanonicalSize
// squared with nearest-neighbour sampling.
func Canonical(img image.Image) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, CanonicalSize, CanonicalSize))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Over, nil)
	return dst
}

func bucket(v uint8) int {
	return int(v) * bucketsPerChannel / 256
}

// SizeBucket is the power-of-two size class used by comparisons.
func SizeBucket(size int64) int {
	if size <= 0 {
		return 0
	}
	return bits.Len64(uint64(size))
}
