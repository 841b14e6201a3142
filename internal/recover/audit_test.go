package recover_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/mimirforensics/recoverfs/internal/recover"
	"github.com/stretchr/testify/require"
)

func TestAuditLogAppendMonotonicIDs(t *testing.T) {
	var buf bytes.Buffer
	sessionID := uuid.New()
	log := recover.NewAuditLog(&buf, sessionID)

	id1, err := log.Append(recover.EventSessionStart, "started", nil, recover.SeverityInfo)
	require.NoError(t, err)
	id2, err := log.Append(recover.EventFileRecovered, "wrote file", nil, recover.SeverityInfo)
	require.NoError(t, err)

	require.Equal(t, uint64(1), id1)
	require.Equal(t, uint64(2), id2)
}

func TestAuditLogWritesOneJSONRecordPerLine(t *testing.T) {
	var buf bytes.Buffer
	sessionID := uuid.New()
	log := recover.NewAuditLog(&buf, sessionID)

	_, err := log.Append(recover.EventFileDetected, "candidate found", map[string]string{"native_id": "42"}, recover.SeverityInfo)
	require.NoError(t, err)
	_, err = log.Append(recover.EventHashFailed, "digest mismatch", nil, recover.SeverityError)
	require.NoError(t, err)

	scanner := bufio.NewScanner(&buf)
	var records []recover.AuditRecord
	for scanner.Scan() {
		var rec recover.AuditRecord
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		records = append(records, rec)
	}
	require.Len(t, records, 2)
	require.Equal(t, sessionID, records[0].SessionID)
	require.Equal(t, recover.EventFileDetected, records[0].EventType)
	require.Equal(t, recover.SeverityError, records[1].Severity)
}
