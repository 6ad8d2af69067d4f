package provider

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/route53/types"

	"github.com/markussiebert/dnscope/internal/family"
	"github.com/markussiebert/dnscope/internal/logger"
)

// DefaultRoute53TTL is used when no TTL is configured
const DefaultRoute53TTL = 60

// DNSRecord represents a DNS record.
type DNSRecord struct {
	Name  string
	Type  string
	Value string
	TTL   int
}

// Route53API defines the interface for the AWS Route53 API, enabling mocking.
type Route53API interface {
	ListHostedZones(ctx context.Context, params *route53.ListHostedZonesInput, optFns ...func(*route53.Options)) (*route53.ListHostedZonesOutput, error)
	ListResourceRecordSets(ctx context.Context, params *route53.ListResourceRecordSetsInput, optFns ...func(*route53.Options)) (*route53.ListResourceRecordSetsOutput, error)
	ChangeResourceRecordSets(ctx context.Context, params *route53.ChangeResourceRecordSetsInput, optFns ...func(*route53.Options)) (*route53.ChangeResourceRecordSetsOutput, error)
}

// AwsRoute53Client represents an AWS Route53 client
type AwsRoute53Client struct {
	client    Route53API
	zone      string
	ttl       int
	zoneCache map[string]string // zone -> hostedZoneId cache
}

// NewAwsRoute53Client creates a new Route53 client
func NewAwsRoute53Client(ctx context.Context, cfg AwsRoute53Config) (*AwsRoute53Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return newAwsRoute53Client(route53.NewFromConfig(awsCfg), cfg), nil
}

// NewAwsRoute53ClientWithMock creates a new Route53 client with a mock API for testing
func NewAwsRoute53ClientWithMock(mock Route53API, cfg AwsRoute53Config) *AwsRoute53Client {
	return newAwsRoute53Client(mock, cfg)
}

func newAwsRoute53Client(api Route53API, cfg AwsRoute53Config) *AwsRoute53Client {
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = DefaultRoute53TTL
	}
	return &AwsRoute53Client{
		client:    api,
		zone:      strings.TrimSuffix(cfg.Zone, "."),
		ttl:       ttl,
		zoneCache: make(map[string]string),
	}
}

// Name returns the provider name
func (c *AwsRoute53Client) Name() string {
	return string(KindRoute53)
}

// Update upserts the A or AAAA record of domain in its hosted zone
func (c *AwsRoute53Client) Update(ctx context.Context, f family.Family, domain string, addr netip.Addr) error {
	if !f.Contains(addr) {
		return fmt.Errorf("%s: no valid %s address to publish", c.Name(), f)
	}

	zone := c.zone
	var err error
	if zone == "" {
		if zone, err = c.zoneFor(ctx, domain); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrUnreachable, c.Name(), err)
		}
	}

	err = c.UpdateRecord(ctx, zone, &DNSRecord{
		Name:  domain,
		Type:  f.RecordType(),
		Value: addr.String(),
		TTL:   c.ttl,
	})
	if err == nil || errors.Is(err, ErrNoChange) {
		return err
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		return &RejectedError{
			Provider:   c.Name(),
			StatusCode: respErr.HTTPStatusCode(),
			Body:       err.Error(),
		}
	}
	return fmt.Errorf("%w: %s: %v", ErrUnreachable, c.Name(), err)
}

// GetRecord retrieves a specific DNS record
func (c *AwsRoute53Client) GetRecord(ctx context.Context, zone, hostname, recordType string) (*DNSRecord, error) {
	zoneID, err := c.getHostedZoneID(ctx, zone)
	if err != nil {
		return nil, fmt.Errorf("get hosted zone: %w", err)
	}

	fqdn := ensureTrailingDot(hostname)

	input := &route53.ListResourceRecordSetsInput{
		HostedZoneId:    aws.String(zoneID),
		StartRecordName: aws.String(fqdn),
		StartRecordType: types.RRType(recordType),
		MaxItems:        aws.Int32(1),
	}

	result, err := c.client.ListResourceRecordSets(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("list record sets: %w", err)
	}

	if len(result.ResourceRecordSets) == 0 {
		return nil, fmt.Errorf("record not found")
	}

	recordSet := result.ResourceRecordSets[0]
	if aws.ToString(recordSet.Name) != fqdn || string(recordSet.Type) != recordType {
		return nil, fmt.Errorf("record not found")
	}

	var value string
	if len(recordSet.ResourceRecords) > 0 {
		value = aws.ToString(recordSet.ResourceRecords[0].Value)
	}

	return &DNSRecord{
		Name:  hostname,
		Type:  recordType,
		Value: value,
		TTL:   int(aws.ToInt64(recordSet.TTL)),
	}, nil
}

// UpdateRecord upserts a DNS record. It returns ErrNoChange without calling
// ChangeResourceRecordSets when the record already holds the value.
func (c *AwsRoute53Client) UpdateRecord(ctx context.Context, zone string, record *DNSRecord) error {
	zoneID, err := c.getHostedZoneID(ctx, zone)
	if err != nil {
		return fmt.Errorf("get hosted zone: %w", err)
	}

	existing, err := c.GetRecord(ctx, zone, record.Name, record.Type)
	if err == nil && existing.Value == record.Value {
		logger.Debug("Route53: %s %s already points to %s", record.Type, record.Name, record.Value)
		return fmt.Errorf("%w: %s %s", ErrNoChange, record.Type, record.Name)
	}

	input := &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: aws.String(zoneID),
		ChangeBatch: &types.ChangeBatch{
			Comment: aws.String("managed by dnscope"),
			Changes: []types.Change{{
				Action: types.ChangeActionUpsert,
				ResourceRecordSet: &types.ResourceRecordSet{
					Name:            aws.String(ensureTrailingDot(record.Name)),
					Type:            types.RRType(record.Type),
					TTL:             aws.Int64(int64(record.TTL)),
					ResourceRecords: []types.ResourceRecord{{Value: aws.String(record.Value)}},
				},
			}},
		},
	}

	if _, err := c.client.ChangeResourceRecordSets(ctx, input); err != nil {
		return fmt.Errorf("change resource record sets: %w", err)
	}
	return nil
}

// Close cleans up resources (no-op for Route53)
func (c *AwsRoute53Client) Close(ctx context.Context) error {
	return nil
}

// getHostedZoneID retrieves the hosted zone ID for a zone name
func (c *AwsRoute53Client) getHostedZoneID(ctx context.Context, zone string) (string, error) {
	if zoneID, exists := c.zoneCache[zone]; exists {
		return zoneID, nil
	}

	zoneWithDot := ensureTrailingDot(zone)

	// List hosted zones manually for mockability
	var marker *string
	for {
		output, err := c.client.ListHostedZones(ctx, &route53.ListHostedZonesInput{Marker: marker})
		if err != nil {
			return "", fmt.Errorf("list hosted zones: %w", err)
		}

		for _, hz := range output.HostedZones {
			if aws.ToString(hz.Name) == zoneWithDot {
				zoneID := strings.TrimPrefix(aws.ToString(hz.Id), "/hostedzone/")
				c.zoneCache[zone] = zoneID
				return zoneID, nil
			}
		}

		if !output.IsTruncated {
			break
		}
		marker = output.NextMarker
	}

	return "", fmt.Errorf("hosted zone for %s not found", zone)
}

func ensureTrailingDot(hostname string) string {
	if !strings.HasSuffix(hostname, ".") {
		return hostname + "."
	}
	return hostname
}

// zoneFor returns the longest hosted zone name that domain belongs to:
// "home.example.co.uk" lives in "example.co.uk" when that zone exists, never in "co.uk" alone.
func (c *AwsRoute53Client) zoneFor(ctx context.Context, domain string) (string, error) {
	fqdn := strings.ToLower(ensureTrailingDot(domain))

	var best, bestID string
	var marker *string
	for {
		output, err := c.client.ListHostedZones(ctx, &route53.ListHostedZonesInput{Marker: marker})
		if err != nil {
			return "", fmt.Errorf("list hosted zones: %w", err)
		}

		for _, hz := range output.HostedZones {
			name := strings.ToLower(aws.ToString(hz.Name))
			if fqdn != name && !strings.HasSuffix(fqdn, "."+name) {
				continue
			}
			if len(name) > len(best) {
				best = name
				bestID = strings.TrimPrefix(aws.ToString(hz.Id), "/hostedzone/")
			}
		}

		if !output.IsTruncated {
			break
		}
		marker = output.NextMarker
	}

	if best == "" {
		return "", fmt.Errorf("no hosted zone contains %s", domain)
	}
	zone := strings.TrimSuffix(best, ".")
	c.zoneCache[zone] = bestID
	return zone, nil
}

// newRoute53Updater creates a new AWS Route53 provider
// It uses the default AWS SDK configuration chain (env vars, ~/.aws/credentials, IAM roles, etc.)
func newRoute53Updater(ctx context.Context, creds Credentials, _ options) (Updater, error) {
	return NewAwsRoute53Client(ctx, creds.Route53)
}
