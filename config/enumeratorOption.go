package config

import (
	"log/slog"
	"time"

	"uppat/exclusion"
)

type TimeoutOption struct{ D time.Duration }

func (to TimeoutOption) EnumOpt() {}

type RetryLimitOption struct{ N int }

func (rlo RetryLimitOption) EnumOpt() {}

type MaxIterationsOption struct{ N int }

func (mio MaxIterationsOption) EnumOpt() {}

type EncodingOption struct{ Enc exclusion.Encoding }

func (eo EncodingOption) EnumOpt() {}

type StoreOption struct{ St *exclusion.Store }

func (so StoreOption) EnumOpt() {}

type LoggerOption struct{ Log *slog.Logger }

func (lo LoggerOption) EnumOpt() {}
