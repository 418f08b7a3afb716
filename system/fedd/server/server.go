// Package server serves a manifest's computations over JSON-RPC.
package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fedflow/fedflow/comp"
	"github.com/fedflow/fedflow/debug"
	"github.com/fedflow/fedflow/manifest"
	"github.com/fedflow/fedflow/sim"
	"github.com/fedflow/fedflow/system/fedd/api"

	"go.lsp.dev/jsonrpc2"
)

type Server struct {
	set *manifest.Set
}

func New(set *manifest.Set) *Server {
	return &Server{set: set}
}

// Serve runs the JSON-RPC loop on stream until the peer disconnects or
// ctx is cancelled.
func (s *Server) Serve(ctx context.Context, stream jsonrpc2.Stream) error {
	conn := jsonrpc2.NewConn(stream)
	conn.Go(ctx, s.Handler)
	select {
	case <-ctx.Done():
		conn.Close()
		<-conn.Done()
		return ctx.Err()
	case <-conn.Done():
		return conn.Err()
	}
}

// Handler dispatches the fed/* methods; anything else gets the standard
// method-not-found reply.
func (s *Server) Handler(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	if debug.Server() {
		debug.Logf("request %s\n", req.Method())
	}
	switch req.Method() {
	case api.MethodList:
		return reply(ctx, s.list(), nil)
	case api.MethodDescribe:
		var params api.DescribeParams
		if err := json.Unmarshal(req.Params(), &params); err != nil {
			return reply(ctx, nil, jsonrpc2.NewError(jsonrpc2.InvalidParams, err.Error()))
		}
		info, err := s.describe(params)
		return reply(ctx, info, err)
	case api.MethodInvoke:
		var params api.InvokeParams
		if err := json.Unmarshal(req.Params(), &params); err != nil {
			return reply(ctx, nil, jsonrpc2.NewError(jsonrpc2.InvalidParams, err.Error()))
		}
		res, err := s.invoke(ctx, params)
		return reply(ctx, res, err)
	default:
		return jsonrpc2.MethodNotFoundHandler(ctx, reply, req)
	}
}

func (s *Server) list() *api.ListResult {
	res := &api.ListResult{}
	for _, c := range s.set.All() {
		res.Computations = append(res.Computations, api.ComputationInfo{
			Name: c.Name(),
			Type: c.TypeSignature().String(),
		})
	}
	return res
}

func (s *Server) describe(params api.DescribeParams) (*api.ComputationInfo, error) {
	c := s.set.Lookup(params.Name)
	if c == nil {
		return nil, jsonrpc2.NewError(jsonrpc2.InvalidParams,
			fmt.Sprintf("unknown computation %q", params.Name))
	}
	return &api.ComputationInfo{Name: c.Name(), Type: c.TypeSignature().String()}, nil
}

func (s *Server) invoke(ctx context.Context, params api.InvokeParams) (*api.InvokeResult, error) {
	c := s.set.Lookup(params.Name)
	if c == nil {
		return nil, jsonrpc2.NewError(jsonrpc2.InvalidParams,
			fmt.Sprintf("unknown computation %q", params.Name))
	}
	var arg any
	if len(params.Arg) > 0 {
		if err := json.Unmarshal(params.Arg, &arg); err != nil {
			return nil, jsonrpc2.NewError(jsonrpc2.InvalidParams, err.Error())
		}
	}
	opts := []sim.Option{}
	if params.Clients > 0 {
		opts = append(opts, sim.WithClients(params.Clients))
	}
	got, err := sim.New(opts...).Invoke(ctx, c, arg)
	if err != nil {
		return nil, jsonrpc2.NewError(jsonrpc2.InternalError, err.Error())
	}
	return &api.InvokeResult{
		Type:   resultType(c),
		Result: got,
	}, nil
}

func resultType(c comp.Computation) string {
	return c.TypeSignature().Result.String()
}
