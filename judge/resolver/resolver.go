//
// Copyright (C) 2026 The simboba Authors. All rights reserved.
//
// simboba is licensed under the Apache License Version 2.0.
//
//

// Package resolver picks a judge implementation based on oracle availability.
package resolver

import (
	"os"
	"sync"

	"github.com/simboba/simboba/judge"
	"github.com/simboba/simboba/judge/heuristic"
	"github.com/simboba/simboba/judge/oracle"
	"github.com/simboba/simboba/log"
)

// apiKeyEnv is the environment variable checked for an oracle credential
// when no key was configured explicitly.
const apiKeyEnv = "OPENAI_API_KEY"

// Resolver resolves to the oracle judge when a credential is available and
// falls back to the heuristic judge otherwise. The fallback warning is
// emitted once per Resolver instance, so resolvers in tests do not leak
// warn state into each other.
type Resolver struct {
	apiKey   string
	baseURL  string
	model    string
	warnOnce sync.Once
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithAPIKey sets the oracle credential explicitly instead of reading the
// environment.
func WithAPIKey(key string) Option {
	return func(r *Resolver) {
		r.apiKey = key
	}
}

// WithBaseURL overrides the oracle API endpoint.
func WithBaseURL(url string) Option {
	return func(r *Resolver) {
		r.baseURL = url
	}
}

// WithModel sets the oracle judge model name.
func WithModel(model string) Option {
	return func(r *Resolver) {
		r.model = model
	}
}

// New creates a Resolver. Without WithAPIKey, the credential is read from
// the OPENAI_API_KEY environment variable.
func New(opt ...Option) *Resolver {
	r := &Resolver{apiKey: os.Getenv(apiKeyEnv)}
	for _, o := range opt {
		o(r)
	}
	return r
}

// Judge returns the resolved judge.
func (r *Resolver) Judge() judge.Judge {
	if r.apiKey != "" {
		return oracle.New(
			oracle.WithAPIKey(r.apiKey),
			oracle.WithBaseURL(r.baseURL),
			oracle.WithModel(r.model),
		)
	}
	r.warnOnce.Do(func() {
		log.Warnf("no API key found, falling back to the keyword-matching judge; set %s for oracle judging", apiKeyEnv)
	})
	return heuristic.New()
}
