//
// Copyright (C) 2026 The simboba Authors. All rights reserved.
//
// simboba is licensed under the Apache License Version 2.0.
//
//

package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/simboba/simboba/dataset"
)

type caseEvalParam struct {
	ctx      context.Context
	evalCase *dataset.Case
	run      *parallelRun
	wg       *sync.WaitGroup
}

func (p *caseEvalParam) reset() {
	p.ctx = nil
	p.evalCase = nil
	p.run = nil
	p.wg = nil
}

var caseEvalParamPool = &sync.Pool{
	New: func() any { return new(caseEvalParam) },
}

func createCaseEvalPool(size int) (*ants.PoolWithFunc, error) {
	if size <= 0 {
		return nil, errors.New("pool size must be greater than 0")
	}
	pool, err := ants.NewPoolWithFunc(size, func(args any) {
		param, ok := args.(*caseEvalParam)
		if !ok {
			panic("case eval pool args type error")
		}
		wg := param.wg
		defer func() {
			wg.Done()
			param.reset()
			caseEvalParamPool.Put(param)
		}()
		param.run.evalCase(param.ctx, param.evalCase)
	})
	if err != nil {
		return nil, fmt.Errorf("create case eval pool: %w", err)
	}
	return pool, nil
}
