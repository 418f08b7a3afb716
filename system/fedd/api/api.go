// Package api defines the wire surface of the fedd service.
package api

import "encoding/json"

const (
	MethodList     = "fed/list"
	MethodDescribe = "fed/describe"
	MethodInvoke   = "fed/invoke"
)

// ComputationInfo describes one invocable computation.
type ComputationInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type ListResult struct {
	Computations []ComputationInfo `json:"computations"`
}

type DescribeParams struct {
	Name string `json:"name"`
}

// InvokeParams names a computation and carries its argument as a plain
// JSON literal, bound server-side against the parameter type.
type InvokeParams struct {
	Name    string          `json:"name"`
	Clients int             `json:"clients,omitempty"`
	Arg     json.RawMessage `json:"arg,omitempty"`
}

type InvokeResult struct {
	Type   string `json:"type"`
	Result any    `json:"result"`
}
