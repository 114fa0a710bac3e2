// Package v1 реализует gRPC API алиасов shortr.v1.AliasService.
package v1

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/Totarae/shortr/internal/model"
	"github.com/Totarae/shortr/internal/service"
)

// GRPCServer реализует AliasServiceServer поверх AliasService.
type GRPCServer struct {
	Service *service.AliasService
	Logger  *zap.Logger
}

func NewGRPCServer(svc *service.AliasService, logger *zap.Logger) *GRPCServer {
	return &GRPCServer{Service: svc, Logger: logger}
}

// NewServer собирает grpc.Server с сервисом алиасов, health-сервисом
// и логирующим перехватчиком.
func NewServer(svc *service.AliasService, logger *zap.Logger) *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		RecoveryInterceptor(logger),
		LoggingInterceptor(logger),
	))
	RegisterAliasServiceServer(srv, NewGRPCServer(svc, logger))

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	return srv
}

// statusError переводит ошибку сервиса в gRPC-статус.
func statusError(err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrDuplicateAlias):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, service.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, service.ErrStorageUnavailable):
		return status.Error(codes.Unavailable, service.ErrStorageUnavailable.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

func (s *GRPCServer) Create(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	link, err := s.Service.Create(ctx, stringField(req, "alias"), stringField(req, "url"))
	if err != nil {
		return nil, statusError(err)
	}
	return linkStruct(link)
}

func (s *GRPCServer) Get(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	link, err := s.Service.Get(ctx, req.GetValue())
	if err != nil {
		return nil, statusError(err)
	}
	return linkStruct(link)
}

func (s *GRPCServer) List(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	links, err := s.Service.GetAll(ctx)
	if err != nil {
		return nil, statusError(err)
	}

	items := make([]any, 0, len(links))
	for _, l := range links {
		items = append(items, linkMap(l))
	}
	list, err := structpb.NewList(items)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode links: %v", err)
	}
	return list, nil
}

// Resolve увеличивает счётчик и возвращает нормализованный целевой адрес.
func (s *GRPCServer) Resolve(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	res, err := s.Service.Resolve(ctx, req.GetValue())
	if err != nil {
		return nil, statusError(err)
	}
	return wrapperspb.String(res.Target), nil
}

func (s *GRPCServer) Update(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	link, err := s.Service.Update(ctx, stringField(req, "alias"), stringField(req, "url"))
	if err != nil {
		return nil, statusError(err)
	}
	return linkStruct(link)
}

func (s *GRPCServer) Delete(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if err := s.Service.Delete(ctx, req.GetValue()); err != nil {
		return nil, statusError(err)
	}
	return &emptypb.Empty{}, nil
}

// BulkCreate принимает {"links":[{"alias","url"}]} и возвращает created, errors, summary.
func (s *GRPCServer) BulkCreate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	linksValue, ok := req.GetFields()["links"]
	if !ok || linksValue.GetListValue() == nil {
		return nil, status.Error(codes.InvalidArgument, "links array required")
	}

	items := make([]model.LinkRequest, 0, len(linksValue.GetListValue().GetValues()))
	for _, v := range linksValue.GetListValue().GetValues() {
		item := v.GetStructValue()
		items = append(items, model.LinkRequest{
			Alias: stringField(item, "alias"),
			URL:   stringField(item, "url"),
		})
	}

	result := s.Service.BulkCreate(ctx, items)
	out, err := structpb.NewStruct(bulkMap(result))
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode bulk result: %v", err)
	}
	return out, nil
}
