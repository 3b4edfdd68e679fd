package xredis

import (
	"time"
)

type Config struct {
	Addr       string        `conf:"addr" yaml:"addr" json:"addr"`
	Username   string        `conf:"username" yaml:"username" json:"username"`
	Password   string        `conf:"password" yaml:"password" json:"password"`
	DB         int           `conf:"db" yaml:"db" json:"db"`
	Expiration time.Duration `conf:"expiration" yaml:"expiration" json:"expiration"`
}
