package yclogging

import (
	logging "github.com/yandex-cloud/go-genproto/yandex/cloud/logging/v1"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/kamrikalive/logg/internal/domain"
)

// NewReadRequest maps a LogQuery onto a ReadRequest. The API accepts either
// criteria or a page token; the token already encodes the original criteria.
func NewReadRequest(q domain.LogQuery) *logging.ReadRequest {
	if q.PageToken != "" {
		return &logging.ReadRequest{
			Selector: &logging.ReadRequest_PageToken{PageToken: q.PageToken},
		}
	}

	return &logging.ReadRequest{
		Selector: &logging.ReadRequest_Criteria{
			Criteria: &logging.Criteria{
				LogGroupId:  q.LogGroupID,
				ResourceIds: []string{q.ResourceID},
				Since:       timestamppb.New(q.Since),
				Until:       timestamppb.New(q.Until),
				PageSize:    int64(q.PageSize),
			},
		},
	}
}

// PageFromResponse converts a ReadResponse into a domain page.
func PageFromResponse(resp *logging.ReadResponse) *domain.LogPage {
	entries := make([]domain.LogEntry, 0, len(resp.GetEntries()))
	for _, e := range resp.GetEntries() {
		entries = append(entries, entryFromProto(e))
	}
	return &domain.LogPage{
		Entries:       entries,
		NextPageToken: resp.GetNextPageToken(),
	}
}

func entryFromProto(e *logging.LogEntry) domain.LogEntry {
	entry := domain.LogEntry{
		Level:   int32(e.GetLevel()),
		Message: e.GetMessage(),
	}
	if ts := e.GetTimestamp(); ts != nil {
		entry.Timestamp = ts.AsTime()
	}
	if p := e.GetJsonPayload(); p != nil {
		entry.Payload = p.AsMap()
	}
	return entry
}
