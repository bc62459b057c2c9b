package server

import (
	"context"
	"fmt"
	"time"

	"github.com/lioia/pagerank/pkg/pagerank"
	"github.com/lioia/pagerank/pkg/sink"
	"github.com/lioia/pagerank/pkg/utils"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName   = "pagerank.Ranker"
	computeMethod = "/" + ServiceName + "/Compute"
)

// Request fields of Compute
const (
	FieldGraph         = "graph"
	FieldResource      = "resource"
	FieldDampingFactor = "damping_factor"
	FieldMaxIterations = "max_iterations"
	FieldStopEpsilon   = "stop_epsilon"
	FieldReduced       = "reduced"
)

// RankerServer computes PageRank. Requests and responses are plain structs
// so the service needs no generated message types.
type RankerServer interface {
	Compute(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var RankerServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RankerServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Compute",
			Handler:    computeHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pagerank.proto",
}

func RegisterRankerServer(s grpc.ServiceRegistrar, srv RankerServer) {
	s.RegisterService(&RankerServiceDesc, srv)
}

func computeHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RankerServer).Compute(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: computeMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(RankerServer).Compute(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

type rankerServer struct {
	svc *Service
}

func (s *rankerServer) Compute(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	params, mode, err := requestParams(in, s.svc.Defaults)
	if err != nil {
		code, _ := classify(err)
		return nil, status.Error(code, err.Error())
	}
	fields := in.GetFields()
	rows := sink.NewStruct()
	summary, err := s.svc.Compute(ctx,
		[]byte(fields[FieldGraph].GetStringValue()), fields[FieldResource].GetStringValue(),
		params, mode, rows)
	if err != nil {
		code, _ := classify(err)
		return nil, status.Error(code, err.Error())
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"run_id":     structpb.NewStringValue(summary.RunID),
		"vertices":   structpb.NewNumberValue(float64(summary.Vertices)),
		"edges":      structpb.NewNumberValue(float64(summary.Edges)),
		"iterations": structpb.NewNumberValue(float64(summary.Iterations)),
		"converged":  structpb.NewBoolValue(summary.Converged),
		"residual":   structpb.NewNumberValue(summary.Residual),
		"rows":       structpb.NewListValue(rows.List()),
	}}, nil
}

func requestParams(in *structpb.Struct, defaults pagerank.Params) (pagerank.Params, pagerank.Mode, error) {
	params := defaults
	fields := in.GetFields()
	if v, ok := fields[FieldDampingFactor]; ok {
		params.DampingFactor = v.GetNumberValue()
	}
	if v, ok := fields[FieldStopEpsilon]; ok {
		params.StopEpsilon = v.GetNumberValue()
	}
	if v, ok := fields[FieldMaxIterations]; ok {
		n := v.GetNumberValue()
		if n != float64(int(n)) {
			return params, pagerank.ModeFull, fmt.Errorf("%w: max iterations %v is not an integer", pagerank.ErrInvalidParameter, n)
		}
		params.MaxIterations = int(n)
	}
	mode := pagerank.ModeFull
	if fields[FieldReduced].GetBoolValue() {
		mode = pagerank.ModeReduced
	}
	return params, mode, params.Validate()
}

func logInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	utils.ServerLog("%s completed in %v (%s)", info.FullMethod, time.Since(start), status.Code(err))
	return resp, err
}

// NewGRPCServer registers the ranker and the standard health service
func NewGRPCServer(svc *Service) *grpc.Server {
	server := grpc.NewServer(grpc.UnaryInterceptor(logInterceptor))
	RegisterRankerServer(server, &rankerServer{svc: svc})
	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(server, hs)
	return server
}

// Client calls a remote ranker
type Client struct {
	conn *grpc.ClientConn
}

// Dial connects to addr without transport security.
// The client has to be closed (`c.Close()`)
func Dial(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.Dial(addr, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Close() error { return c.conn.Close() }

// Compute sends an edge list with the given parameters
func (c *Client) Compute(ctx context.Context, contents []byte, params pagerank.Params, mode pagerank.Mode) (*structpb.Struct, error) {
	in := &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldGraph:         structpb.NewStringValue(string(contents)),
		FieldDampingFactor: structpb.NewNumberValue(params.DampingFactor),
		FieldMaxIterations: structpb.NewNumberValue(float64(params.MaxIterations)),
		FieldStopEpsilon:   structpb.NewNumberValue(params.StopEpsilon),
		FieldReduced:       structpb.NewBoolValue(mode == pagerank.ModeReduced),
	}}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, computeMethod, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Health asks the remote health service about the ranker
func (c *Client) Health(ctx context.Context) (healthpb.HealthCheckResponse_ServingStatus, error) {
	resp, err := healthpb.NewHealthClient(c.conn).Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	return resp.GetStatus(), nil
}
