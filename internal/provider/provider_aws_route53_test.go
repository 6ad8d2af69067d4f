package provider

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/route53/types"

	"github.com/markussiebert/dnscope/internal/family"
)

// mockRoute53API satisfies the Route53API interface and allows controlling the responses.
type mockRoute53API struct {
	ListHostedZonesFunc          func(ctx context.Context, params *route53.ListHostedZonesInput, optFns ...func(*route53.Options)) (*route53.ListHostedZonesOutput, error)
	ListResourceRecordSetsFunc   func(ctx context.Context, params *route53.ListResourceRecordSetsInput, optFns ...func(*route53.Options)) (*route53.ListResourceRecordSetsOutput, error)
	ChangeResourceRecordSetsFunc func(ctx context.Context, params *route53.ChangeResourceRecordSetsInput, optFns ...func(*route53.Options)) (*route53.ChangeResourceRecordSetsOutput, error)
}

func (m *mockRoute53API) ListHostedZones(ctx context.Context, params *route53.ListHostedZonesInput, optFns ...func(*route53.Options)) (*route53.ListHostedZonesOutput, error) {
	if m.ListHostedZonesFunc != nil {
		return m.ListHostedZonesFunc(ctx, params, optFns...)
	}
	return nil, fmt.Errorf("ListHostedZonesFunc is not implemented")
}

func (m *mockRoute53API) ListResourceRecordSets(ctx context.Context, params *route53.ListResourceRecordSetsInput, optFns ...func(*route53.Options)) (*route53.ListResourceRecordSetsOutput, error) {
	if m.ListResourceRecordSetsFunc != nil {
		return m.ListResourceRecordSetsFunc(ctx, params, optFns...)
	}
	return nil, fmt.Errorf("ListResourceRecordSetsFunc is not implemented")
}

func (m *mockRoute53API) ChangeResourceRecordSets(ctx context.Context, params *route53.ChangeResourceRecordSetsInput, optFns ...func(*route53.Options)) (*route53.ChangeResourceRecordSetsOutput, error) {
	if m.ChangeResourceRecordSetsFunc != nil {
		return m.ChangeResourceRecordSetsFunc(ctx, params, optFns...)
	}
	return nil, fmt.Errorf("ChangeResourceRecordSetsFunc is not implemented")
}

func singleZone(ctx context.Context, params *route53.ListHostedZonesInput, optFns ...func(*route53.Options)) (*route53.ListHostedZonesOutput, error) {
	return &route53.ListHostedZonesOutput{
		HostedZones: []types.HostedZone{{
			Id:   aws.String("/hostedzone/ZONE123"),
			Name: aws.String("dyn.tld."),
		}},
	}, nil
}

func TestAwsRoute53Client_GetRecord(t *testing.T) {
	mockAPI := &mockRoute53API{
		ListHostedZonesFunc: singleZone,
		ListResourceRecordSetsFunc: func(ctx context.Context, params *route53.ListResourceRecordSetsInput, optFns ...func(*route53.Options)) (*route53.ListResourceRecordSetsOutput, error) {
			assert.Equal(t, "ZONE123", aws.ToString(params.HostedZoneId))
			assert.Equal(t, "example.dyn.tld.", aws.ToString(params.StartRecordName))
			assert.Equal(t, types.RRTypeAaaa, params.StartRecordType)

			return &route53.ListResourceRecordSetsOutput{
				ResourceRecordSets: []types.ResourceRecordSet{{
					Name:            aws.String("example.dyn.tld."),
					Type:            types.RRTypeAaaa,
					TTL:             aws.Int64(300),
					ResourceRecords: []types.ResourceRecord{{Value: aws.String("2001:db8::5")}},
				}},
			}, nil
		},
	}

	client := NewAwsRoute53ClientWithMock(mockAPI, AwsRoute53Config{})
	record, err := client.GetRecord(context.Background(), "dyn.tld", "example.dyn.tld", "AAAA")
	assert.NoError(t, err)
	assert.Equal(t, &DNSRecord{Name: "example.dyn.tld", Type: "AAAA", Value: "2001:db8::5", TTL: 300}, record)
}

func TestAwsRoute53Client_Update(t *testing.T) {
	mockAPI := &mockRoute53API{ListHostedZonesFunc: singleZone}
	var changeCalls int

	mockAPI.ListResourceRecordSetsFunc = func(ctx context.Context, params *route53.ListResourceRecordSetsInput, optFns ...func(*route53.Options)) (*route53.ListResourceRecordSetsOutput, error) {
		return &route53.ListResourceRecordSetsOutput{ResourceRecordSets: []types.ResourceRecordSet{}}, nil
	}

	mockAPI.ChangeResourceRecordSetsFunc = func(ctx context.Context, params *route53.ChangeResourceRecordSetsInput, optFns ...func(*route53.Options)) (*route53.ChangeResourceRecordSetsOutput, error) {
		changeCalls++
		assert.Equal(t, "ZONE123", aws.ToString(params.HostedZoneId))
		assert.Equal(t, 1, len(params.ChangeBatch.Changes))

		change := params.ChangeBatch.Changes[0]
		assert.Equal(t, types.ChangeActionUpsert, change.Action)
		assert.Equal(t, "example.dyn.tld.", aws.ToString(change.ResourceRecordSet.Name))
		assert.Equal(t, types.RRTypeA, change.ResourceRecordSet.Type)
		assert.Equal(t, int64(120), aws.ToInt64(change.ResourceRecordSet.TTL))
		assert.Equal(t, "203.0.113.7", aws.ToString(change.ResourceRecordSet.ResourceRecords[0].Value))
		return &route53.ChangeResourceRecordSetsOutput{}, nil
	}

	client := NewAwsRoute53ClientWithMock(mockAPI, AwsRoute53Config{TTL: 120})
	err := client.Update(context.Background(), family.V4, "example.dyn.tld", netip.MustParseAddr("203.0.113.7"))
	assert.NoError(t, err)
	assert.Equal(t, 1, changeCalls)
}

func TestAwsRoute53Client_UpdateSkipsCurrentRecord(t *testing.T) {
	var changeCalls int
	mockAPI := &mockRoute53API{
		ListHostedZonesFunc: singleZone,
		ListResourceRecordSetsFunc: func(ctx context.Context, params *route53.ListResourceRecordSetsInput, optFns ...func(*route53.Options)) (*route53.ListResourceRecordSetsOutput, error) {
			return &route53.ListResourceRecordSetsOutput{
				ResourceRecordSets: []types.ResourceRecordSet{{
					Name:            aws.String("example.dyn.tld."),
					Type:            types.RRTypeA,
					TTL:             aws.Int64(60),
					ResourceRecords: []types.ResourceRecord{{Value: aws.String("203.0.113.7")}},
				}},
			}, nil
		},
		ChangeResourceRecordSetsFunc: func(ctx context.Context, params *route53.ChangeResourceRecordSetsInput, optFns ...func(*route53.Options)) (*route53.ChangeResourceRecordSetsOutput, error) {
			changeCalls++
			return &route53.ChangeResourceRecordSetsOutput{}, nil
		},
	}

	client := NewAwsRoute53ClientWithMock(mockAPI, AwsRoute53Config{Zone: "dyn.tld."})
	err := client.Update(context.Background(), family.V4, "example.dyn.tld", netip.MustParseAddr("203.0.113.7"))
	assert.True(t, errors.Is(err, ErrNoChange))
	assert.False(t, errors.Is(err, ErrUnreachable))
	assert.Equal(t, 0, changeCalls)
}

func TestAwsRoute53Client_UnknownZone(t *testing.T) {
	mockAPI := &mockRoute53API{ListHostedZonesFunc: singleZone}

	client := NewAwsRoute53ClientWithMock(mockAPI, AwsRoute53Config{})
	err := client.Update(context.Background(), family.V4, "home.other.tld", netip.MustParseAddr("203.0.113.7"))
	assert.True(t, errors.Is(err, ErrUnreachable))
}

func TestAwsRoute53Client_LongestZoneWins(t *testing.T) {
	var listCalls int
	mockAPI := &mockRoute53API{
		ListHostedZonesFunc: func(ctx context.Context, params *route53.ListHostedZonesInput, optFns ...func(*route53.Options)) (*route53.ListHostedZonesOutput, error) {
			listCalls++
			if params.Marker == nil {
				return &route53.ListHostedZonesOutput{
					HostedZones: []types.HostedZone{
						{Id: aws.String("/hostedzone/COUK"), Name: aws.String("co.uk.")},
						{Id: aws.String("/hostedzone/OTHER"), Name: aws.String("dyn.tld.")},
					},
					IsTruncated: true,
					NextMarker:  aws.String("page2"),
				}, nil
			}
			return &route53.ListHostedZonesOutput{
				HostedZones: []types.HostedZone{
					{Id: aws.String("/hostedzone/EXAMPLE"), Name: aws.String("example.co.uk.")},
					{Id: aws.String("/hostedzone/LOOKALIKE"), Name: aws.String("le.co.uk.")},
				},
			}, nil
		},
		ListResourceRecordSetsFunc: func(ctx context.Context, params *route53.ListResourceRecordSetsInput, optFns ...func(*route53.Options)) (*route53.ListResourceRecordSetsOutput, error) {
			return &route53.ListResourceRecordSetsOutput{}, nil
		},
	}

	var zoneID string
	mockAPI.ChangeResourceRecordSetsFunc = func(ctx context.Context, params *route53.ChangeResourceRecordSetsInput, optFns ...func(*route53.Options)) (*route53.ChangeResourceRecordSetsOutput, error) {
		zoneID = aws.ToString(params.HostedZoneId)
		return &route53.ChangeResourceRecordSetsOutput{}, nil
	}

	client := NewAwsRoute53ClientWithMock(mockAPI, AwsRoute53Config{})
	err := client.Update(context.Background(), family.V4, "home.example.co.uk", netip.MustParseAddr("203.0.113.7"))
	assert.NoError(t, err)
	assert.Equal(t, "EXAMPLE", zoneID)
	// zone lookup pages once, the id lookup is served from the cache
	assert.Equal(t, 2, listCalls)
}

func TestAwsRoute53Client_ZoneForApex(t *testing.T) {
	client := NewAwsRoute53ClientWithMock(&mockRoute53API{ListHostedZonesFunc: singleZone}, AwsRoute53Config{})
	zone, err := client.zoneFor(context.Background(), "DYN.tld")
	assert.NoError(t, err)
	assert.Equal(t, "dyn.tld", zone)

	_, err = client.zoneFor(context.Background(), "xdyn.tld")
	assert.Error(t, err)
}
