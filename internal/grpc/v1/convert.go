package v1

import (
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Totarae/shortr/internal/model"
)

// stringField возвращает строковое поле Struct или "", если поля нет.
func stringField(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

func linkMap(l *model.ShortLink) map[string]any {
	return map[string]any{
		"alias":     l.Alias,
		"url":       l.URL,
		"count":     float64(l.Count),
		"createdAt": l.CreatedAt.Format(time.RFC3339Nano),
	}
}

func linkStruct(l *model.ShortLink) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(linkMap(l))
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode link: %v", err)
	}
	return s, nil
}

// LinkFromStruct разбирает запись, полученную от сервера.
func LinkFromStruct(s *structpb.Struct) (*model.ShortLink, error) {
	link := &model.ShortLink{
		Alias: stringField(s, "alias"),
		URL:   stringField(s, "url"),
		Count: uint64(s.GetFields()["count"].GetNumberValue()),
	}
	if raw := stringField(s, "createdAt"); raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, err
		}
		link.CreatedAt = t
	}
	return link, nil
}

func bulkMap(r *model.BulkResult) map[string]any {
	created := make([]any, 0, len(r.Created))
	for _, l := range r.Created {
		created = append(created, linkMap(l))
	}
	failed := make([]any, 0, len(r.Errors))
	for _, e := range r.Errors {
		failed = append(failed, map[string]any{"alias": e.Alias, "error": e.Error})
	}
	return map[string]any{
		"created": created,
		"errors":  failed,
		"summary": map[string]any{
			"total":   r.Summary.Total,
			"created": r.Summary.Created,
			"failed":  r.Summary.Failed,
		},
	}
}
