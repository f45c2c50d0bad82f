package services

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"
	"unicode"

	"github.com/amirphl/cleaning-orders/models"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// QuoteDocument is a rendered price offer
type QuoteDocument struct {
	Filename    string
	ContentType string
	Data        []byte
}

// QuoteDocumentRenderer turns an order into a document the customer can keep
type QuoteDocumentRenderer interface {
	Render(order *models.Order) (*QuoteDocument, error)
}

const (
	docWidth      = 640
	docMargin     = 32
	docLineHeight = 20
)

// PNGQuoteRenderer draws the offer as a PNG with the built-in bitmap font
type PNGQuoteRenderer struct {
	profile BusinessProfile
}

func NewPNGQuoteRenderer(profile BusinessProfile) *PNGQuoteRenderer {
	return &PNGQuoteRenderer{profile: profile}
}

type docLine struct {
	text   string
	accent bool
	gap    bool
}

func (r *PNGQuoteRenderer) lines(order *models.Order) []docLine {
	typeLabel := order.CleaningType.Label()
	if q := order.Quote(); q != nil && q.ServiceName != "" {
		typeLabel = q.ServiceName
	}

	out := []docLine{
		{text: r.profile.Name, accent: true},
		{text: "Oferta cenowa nr " + order.TrackingCode},
		{gap: true},
		{text: "Klient: " + order.FullName()},
		{text: "Adres: " + order.Address},
		{text: "Typ sprzątania: " + typeLabel},
		{text: fmt.Sprintf("Metraż: %d m2", order.SquareMeters)},
		{text: "Preferowany termin: " + FormatPolishDate(order.PreferredDate)},
	}

	if len(order.AdditionalServices) > 0 {
		out = append(out, docLine{gap: true}, docLine{text: "Usługi dodatkowe:"})
		for _, a := range order.AdditionalServices {
			out = append(out, docLine{text: fmt.Sprintf("  - %s x%d: %d zł", a.Name, a.Quantity, a.Contribution)})
		}
	}

	out = append(out,
		docLine{gap: true},
		docLine{text: "Cena: " + QuotedPrice(order), accent: true},
		docLine{gap: true},
		docLine{text: "Oferta ważna przez 30 dni."},
		docLine{text: "Cena może ulec zmianie w zależności od stanu obiektu."},
		docLine{gap: true},
		docLine{text: "Telefon: " + r.profile.Phone},
		docLine{text: "E-mail: " + r.profile.Email},
	)
	return out
}

// Render draws the offer and encodes it as PNG
func (r *PNGQuoteRenderer) Render(order *models.Order) (*QuoteDocument, error) {
	lines := r.lines(order)
	height := docMargin*2 + docLineHeight*len(lines)

	img := image.NewRGBA(image.Rect(0, 0, docWidth, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	// header band
	draw.Draw(img, image.Rect(0, 0, docWidth, docMargin/2), &image.Uniform{C: color.RGBA{R: 14, G: 165, B: 233, A: 255}}, image.Point{}, draw.Src)

	ink := image.NewUniform(color.RGBA{R: 30, G: 41, B: 59, A: 255})
	accent := image.NewUniform(color.RGBA{R: 3, G: 105, B: 161, A: 255})

	d := &font.Drawer{Dst: img, Face: basicfont.Face7x13}
	y := docMargin + docLineHeight
	for _, l := range lines {
		if !l.gap {
			d.Src = ink
			if l.accent {
				d.Src = accent
			}
			d.Dot = fixed.P(docMargin, y)
			d.DrawString(FoldDiacritics(l.text))
		}
		y += docLineHeight
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode quote document: %w", err)
	}

	return &QuoteDocument{
		Filename:    "oferta_" + order.TrackingCode + ".png",
		ContentType: "image/png",
		Data:        buf.Bytes(),
	}, nil
}

var strokeLetters = strings.NewReplacer("ł", "l", "Ł", "L")

// FoldDiacritics strips combining marks so text fits the ASCII bitmap font
func FoldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strokeLetters.Replace(s))
	if err != nil {
		return s
	}
	return out
}
