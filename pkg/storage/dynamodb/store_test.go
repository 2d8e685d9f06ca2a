package dynamodb

import (
	"sort"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/otp-transfers/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storedTimestamp(t *testing.T, ts time.Time) string {
	t.Helper()
	av, err := marshalMap(models.Transaction{TransactionID: "tx", Timestamp: ts})
	require.NoError(t, err)
	s, ok := av["timestamp"].(*types.AttributeValueMemberS)
	require.True(t, ok, "timestamp must be stored as a string sort key")
	return s.Value
}

func TestTimestampsSortChronologically(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 5, 0, time.UTC)
	times := []time.Time{
		base.Add(120 * time.Millisecond),
		base.Add(100 * time.Millisecond),
		base,
		base.Add(time.Second),
		base.Add(123456789 * time.Nanosecond),
	}

	stored := make([]string, len(times))
	for i, ts := range times {
		stored[i] = storedTimestamp(t, ts)
		assert.Len(t, stored[i], len(timestampLayout))
	}
	sort.Strings(stored)

	assert.Equal(t, []string{
		"2024-03-01T12:00:05.000000000Z",
		"2024-03-01T12:00:05.100000000Z",
		"2024-03-01T12:00:05.120000000Z",
		"2024-03-01T12:00:05.123456789Z",
		"2024-03-01T12:00:06.000000000Z",
	}, stored)
}

func TestTimestampsRoundTrip(t *testing.T) {
	manila := time.FixedZone("PHT", 8*60*60)
	ts := time.Date(2024, 3, 1, 20, 0, 5, 100_000_000, manila)

	av, err := marshalMap(models.Transaction{TransactionID: "tx", Timestamp: ts})
	require.NoError(t, err)

	var tx models.Transaction
	require.NoError(t, attributevalue.UnmarshalMap(av, &tx))
	assert.True(t, ts.Equal(tx.Timestamp))
	assert.Equal(t, "2024-03-01T12:00:05.100000000Z", storedTimestamp(t, ts))
}
