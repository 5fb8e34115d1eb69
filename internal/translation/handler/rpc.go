package handler

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/internal/translation/service"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/proto"
	"github.com/Adithya-Monish-Kumar-K/ipalizer/pkg/rpc"
)

// RegisterRPC exposes svc as Phonetics.Translate and Phonetics.Symbols.
func RegisterRPC(s *rpc.Server, svc *service.Service) {
	s.Register(proto.MethodTranslate, func(ctx context.Context, raw json.RawMessage) (any, error) {
		var req proto.TranslateRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, fmt.Errorf("decoding request: %w", err)
		}
		resp, err := svc.Translate(ctx, req.Input, analytics.SourceRPC)
		if err != nil {
			return nil, err
		}
		return proto.TranslateResponse(resp), nil
	})

	s.Register(proto.MethodSymbols, func(ctx context.Context, raw json.RawMessage) (any, error) {
		table := svc.Symbols()
		resp := proto.SymbolsResponse{
			Notation:   table.Notation,
			Target:     table.Target,
			Symbols:    make([]proto.Symbol, len(table.Symbols)),
			Duplicates: table.Duplicates,
		}
		for i, sym := range table.Symbols {
			resp.Symbols[i] = proto.Symbol(sym)
		}
		return resp, nil
	})
}
