// Package usps looks up Priority Mail rates through the USPS RateV4 XML API.
package usps

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"stowaway/pkg/client"
	"stowaway/pkg/config"
	"stowaway/pkg/logger"
	"stowaway/pkg/model"
)

const (
	apiName  = "RateV4"
	revision = 2

	containerVariable = "VARIABLE"
	sizeRegular       = "REGULAR"
)

var ErrMissingUserID = errors.New("USPS user id is not configured")

type rateRequest struct {
	XMLName  xml.Name    `xml:"RateV4Request"`
	UserID   string      `xml:"USERID,attr"`
	Revision int         `xml:"Revision"`
	Package  ratePackage `xml:"Package"`
}

type ratePackage struct {
	ID             string `xml:"ID,attr"`
	Service        string `xml:"Service"`
	ZipOrigination string `xml:"ZipOrigination"`
	ZipDestination string `xml:"ZipDestination"`
	Pounds         int    `xml:"Pounds"`
	Ounces         int    `xml:"Ounces"`
	Container      string `xml:"Container"`
	Size           string `xml:"Size"`
	Width          string `xml:"Width"`
	Length         string `xml:"Length"`
	Height         string `xml:"Height"`
	Girth          string `xml:"Girth"`
	Machinable     bool   `xml:"Machinable"`
}

type apiError struct {
	Number      string `xml:"Number"`
	Description string `xml:"Description"`
}

// rateResponse covers RateV4Response as well as a bare <Error> document,
// whose Description then lands on the root.
type rateResponse struct {
	XMLName     xml.Name
	Description string    `xml:"Description"`
	Error       *apiError `xml:"Error"`
	Package     *struct {
		Error   *apiError `xml:"Error"`
		Postage []struct {
			Rate string `xml:"Rate"`
		} `xml:"Postage"`
	} `xml:"Package"`
}

type Client struct {
	http    *client.HttpClient
	userID  string
	fromZip string
	log     *logger.Logger
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		http:    client.NewHttpClient(cfg.USPSBaseURL, cfg.USPSTimeout),
		userID:  cfg.USPSUserID,
		fromZip: cfg.USPSFromZip,
		log:     cfg.Log,
	}
}

// PriorityRate returns the Priority Mail rate for a package of ounces to destZip.
// It makes a single attempt.
func (c *Client) PriorityRate(ctx context.Context, destZip string, ounces int) (model.Money, error) {
	if strings.TrimSpace(c.userID) == "" {
		return 0, ErrMissingUserID
	}
	if ounces < 1 {
		ounces = 1
	}

	payload, err := xml.Marshal(rateRequest{
		UserID:   c.userID,
		Revision: revision,
		Package: ratePackage{
			ID:             "1",
			Service:        model.ShippingServicePriority,
			ZipOrigination: c.fromZip,
			ZipDestination: destZip,
			Pounds:         ounces / 16,
			Ounces:         ounces % 16,
			Container:      containerVariable,
			Size:           sizeRegular,
			Machinable:     true,
		},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to encode rate request: %w", err)
	}

	start := time.Now()
	resp, err := c.http.GET(ctx, url.Values{
		"API": {apiName},
		"XML": {string(payload)},
	})
	if err != nil {
		return 0, transportFailure(err)
	}
	c.log.Debug("USPS rate lookup completed",
		"status", resp.StatusCode,
		"destination_zip", destZip,
		"ounces", ounces,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	if !resp.OK() {
		return 0, fmt.Errorf("USPS returned HTTP %d", resp.StatusCode)
	}

	return parseRate(resp.Body)
}

// transportFailure reports a failed round trip without the request URL,
// whose query string carries the USERID.
func transportFailure(err error) error {
	var urlErr *url.Error
	switch {
	case errors.Is(err, context.Canceled):
		return errors.New("USPS request failed: request canceled")
	case errors.As(err, &urlErr) && urlErr.Timeout():
		return errors.New("USPS request failed: timeout")
	case errors.As(err, &urlErr):
		return fmt.Errorf("USPS request failed: %s", redactURL(urlErr.Err.Error(), urlErr.URL))
	default:
		return errors.New("USPS request failed")
	}
}

func redactURL(msg, rawURL string) string {
	if rawURL == "" {
		return msg
	}
	return strings.ReplaceAll(msg, rawURL, "[redacted]")
}

func parseRate(body []byte) (model.Money, error) {
	var doc rateResponse
	if err := xml.Unmarshal(body, &doc); err != nil {
		return 0, fmt.Errorf("malformed USPS response: %w", err)
	}

	if desc, ok := doc.errorDescription(); ok {
		return 0, fmt.Errorf("USPS Rate error: %s", desc)
	}

	if doc.Package == nil || len(doc.Package.Postage) == 0 || strings.TrimSpace(doc.Package.Postage[0].Rate) == "" {
		return 0, errors.New("unable to parse USPS rate")
	}

	raw := doc.Package.Postage[0].Rate
	rate, err := model.ParseMoney(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid rate %q returned by USPS", raw)
	}
	return rate, nil
}

func (r *rateResponse) errorDescription() (string, bool) {
	var found *apiError
	switch {
	case r.XMLName.Local == "Error":
		found = &apiError{Description: r.Description}
	case r.Package != nil && r.Package.Error != nil:
		found = r.Package.Error
	case r.Error != nil:
		found = r.Error
	default:
		return "", false
	}

	desc := strings.TrimSpace(found.Description)
	if desc == "" {
		desc = "USPS error"
	}
	return desc, true
}
