package marketdata

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/iwvelando/mortgage-calc/pkg/constants"
	"github.com/iwvelando/mortgage-calc/pkg/format"
	"go.uber.org/zap"
)

// FeedConfig describes an XML rate feed. A feed with a RequestBody is
// queried with a SOAP POST, otherwise with a plain GET.
type FeedConfig struct {
	URL         string        `yaml:"url"`
	RequestBody string        `yaml:"requestBody,omitempty"`
	SOAPAction  string        `yaml:"soapAction,omitempty"`
	RatePath    string        `yaml:"ratePath"`
	DatePath    string        `yaml:"datePath,omitempty"`
	RateType    string        `yaml:"rateType,omitempty"`
	Source      string        `yaml:"source,omitempty"`
	Margin      float64       `yaml:"margin,omitempty"`
	Timeout     time.Duration `yaml:"timeout,omitempty"`
}

// XMLFeedProvider reads the current rate from an XML document.
type XMLFeedProvider struct {
	cfg    FeedConfig
	client *http.Client
	logger *zap.Logger
}

// NewXMLFeedProvider validates the feed configuration and returns a provider.
func NewXMLFeedProvider(cfg FeedConfig, logger *zap.Logger) (*XMLFeedProvider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("xml feed requires a url")
	}
	if strings.TrimSpace(cfg.RatePath) == "" {
		return nil, fmt.Errorf("xml feed requires a rate path")
	}
	if _, err := etree.CompilePath(cfg.RatePath); err != nil {
		return nil, fmt.Errorf("invalid rate path %q: %w", cfg.RatePath, err)
	}
	if cfg.DatePath != "" {
		if _, err := etree.CompilePath(cfg.DatePath); err != nil {
			return nil, fmt.Errorf("invalid date path %q: %w", cfg.DatePath, err)
		}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = constants.DefaultFeedTimeout
	}
	if cfg.RateType == "" {
		cfg.RateType = constants.DefaultRateType
	}
	if cfg.Source == "" {
		cfg.Source = cfg.URL
	}

	return &XMLFeedProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}, nil
}

// CurrentRate implements Provider. The configured margin is added to the
// published rate.
func (p *XMLFeedProvider) CurrentRate(ctx context.Context) (Quote, error) {
	body, err := p.fetch(ctx)
	if err != nil {
		return Quote{}, err
	}

	quote, err := p.parse(body)
	if err != nil {
		return Quote{}, err
	}

	p.logger.Info("retrieved market rate",
		zap.String("op", "marketdata.XMLFeedProvider.CurrentRate"),
		zap.String("source", quote.Source),
		zap.Float64("rate", quote.Rate),
		zap.Float64("margin", p.cfg.Margin),
	)
	return quote, nil
}

func (p *XMLFeedProvider) fetch(ctx context.Context) ([]byte, error) {
	method := http.MethodGet
	var reqBody io.Reader
	if p.cfg.RequestBody != "" {
		method = http.MethodPost
		reqBody = bytes.NewBufferString(p.cfg.RequestBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.cfg.URL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/soap+xml; charset=utf-8")
		if p.cfg.SOAPAction != "" {
			req.Header.Set("SOAPAction", p.cfg.SOAPAction)
		}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	p.logger.Debug("rate feed response",
		zap.String("op", "marketdata.XMLFeedProvider.fetch"),
		zap.Int("bytes", len(body)),
	)
	return body, nil
}

// parse extracts the first element matching the rate path. Dates are read
// from the date path when configured and fall back to the fetch time.
func (p *XMLFeedProvider) parse(raw []byte) (Quote, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return Quote{}, fmt.Errorf("failed to parse XML: %w", err)
	}

	rateElement := doc.FindElement(p.cfg.RatePath)
	if rateElement == nil {
		return Quote{}, fmt.Errorf("%w: no element at %s", ErrNoQuote, p.cfg.RatePath)
	}

	rate, err := format.ParsePercent(rateElement.Text())
	if err != nil {
		return Quote{}, fmt.Errorf("failed to parse rate: %w", err)
	}

	date := time.Now()
	if p.cfg.DatePath != "" {
		if dateElement := doc.FindElement(p.cfg.DatePath); dateElement != nil {
			if parsed, ok := parseFeedDate(dateElement.Text()); ok {
				date = parsed
			}
		}
	}

	return Quote{
		Type:   p.cfg.RateType,
		Rate:   rate + p.cfg.Margin,
		Source: p.cfg.Source,
		Date:   date,
	}, nil
}

func parseFeedDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{time.RFC3339, constants.DayLayout} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
