package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nutriverse/nutribot/internal/catalog"
	"github.com/nutriverse/nutribot/internal/profile"
)

var (
	// ErrInvalidImage is returned for empty or non-image input.
	ErrInvalidImage = errors.New("invalid image")
	// ErrBrandNotDetected is returned when the vision model cannot read a brand.
	ErrBrandNotDetected = errors.New("brand could not be detected")
)

// Vision describes an image following an instruction.
type Vision interface {
	DescribeImage(ctx context.Context, image []byte, mimeType, instruction string) (string, error)
}

// Catalog finds a product by a search string.
type Catalog interface {
	Search(ctx context.Context, query string) (catalog.Product, error)
}

// Recorder keeps finished analyses on a user's profile.
type Recorder interface {
	AddAnalysis(userID string, rec profile.AnalysisRecord) error
}

// ProductReport is the result of a full product analysis.
type ProductReport struct {
	Brand       string        `json:"brand"`
	ProductName string        `json:"product_name"`
	Ingredients string        `json:"ingredients"`
	Results     []DietVerdict `json:"risk_analysis"`
	RiskScore   float64       `json:"risk_score"`
	Safety      string        `json:"overall_safety"`
}

// Coordinator runs photo → brand → catalog → ingredient analysis.
type Coordinator struct {
	vision   Vision
	catalog  Catalog
	analyzer *Analyzer
	recorder Recorder
	logger   *slog.Logger
}

// NewCoordinator creates a Coordinator. recorder may be nil.
func NewCoordinator(vision Vision, cat Catalog, analyzer *Analyzer, recorder Recorder, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Coordinator{
		vision:   vision,
		catalog:  cat,
		analyzer: analyzer,
		recorder: recorder,
		logger:   logger.With("component", "product_coordinator"),
	}
}

// DetectBrand reads the brand name from a product photo.
func (c *Coordinator) DetectBrand(ctx context.Context, image []byte, mimeType string) (string, error) {
	mimeType, err := ImageMIME(image, mimeType)
	if err != nil {
		return "", err
	}
	brand, err := c.vision.DescribeImage(ctx, image, mimeType, brandInstruction)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrBrandNotDetected, err)
	}
	brand = strings.Trim(strings.TrimSpace(brand), `."'*`)
	if brand == "" || strings.Contains(strings.ToUpper(brand), "UNKNOWN") {
		return "", ErrBrandNotDetected
	}
	return brand, nil
}

// Analyze identifies the product in a photo and checks its ingredients
// against diets. When userID is set the result is recorded on the profile.
func (c *Coordinator) Analyze(ctx context.Context, userID string, image []byte, mimeType string, diets []string) (ProductReport, error) {
	brand, err := c.DetectBrand(ctx, image, mimeType)
	if err != nil {
		return ProductReport{}, err
	}
	c.logger.InfoContext(ctx, "Detected brand", "brand", brand)

	product, err := c.catalog.Search(ctx, brand)
	if err != nil {
		return ProductReport{}, fmt.Errorf("catalog lookup for %q: %w", brand, err)
	}

	results := c.analyzer.AnalyzeIngredients(ctx, product.Ingredients, diets)
	score := RiskScore(results)
	report := ProductReport{
		Brand:       brand,
		ProductName: product.Name,
		Ingredients: product.Ingredients,
		Results:     results,
		RiskScore:   score,
		Safety:      SafetyLabel(score),
	}

	if userID != "" && c.recorder != nil {
		rec := profile.AnalysisRecord{
			Brand:       report.Brand,
			ProductName: report.ProductName,
			RiskScore:   report.RiskScore,
			Safety:      report.Safety,
		}
		if err := c.recorder.AddAnalysis(userID, rec); err != nil {
			c.logger.WarnContext(ctx, "Failed to record analysis", "user_id", userID, "error", err)
		}
	}

	c.logger.InfoContext(ctx, "Product analysis complete", "product", report.ProductName, "risk_score", report.RiskScore, "safety", report.Safety)
	return report, nil
}

// ImageMIME validates image data and returns its MIME type, sniffing it when
// mimeType is empty.
func ImageMIME(image []byte, mimeType string) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("%w: empty image", ErrInvalidImage)
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(image)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return "", fmt.Errorf("%w: unsupported type %q", ErrInvalidImage, mimeType)
	}
	return mimeType, nil
}
