package ledger

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"

	"tier0-lending/internal/domain/asset"
	"tier0-lending/internal/infrastructure/cache"

	"github.com/redis/go-redis/v9"
)

// Balances and allowances live in two hashes; every move runs as one Lua
// script so a transfer is atomic across replicas. Amounts are bounded by
// int64 because HINCRBY is. Lua numbers are doubles, so the scripts compare
// and add amounts as decimal strings and check the credit side before the
// first write.
const decimals = `
local function lt(a, b)
  if #a ~= #b then return #a < #b end
  return a < b
end
local function add(a, b)
  local out, carry, i, j = {}, 0, #a, #b
  while i > 0 or j > 0 or carry > 0 do
    local d = carry
    if i > 0 then d = d + string.byte(a, i) - 48; i = i - 1 end
    if j > 0 then d = d + string.byte(b, j) - 48; j = j - 1 end
    table.insert(out, 1, string.char(48 + d % 10))
    carry = math.floor(d / 10)
  end
  return table.concat(out)
end
local MAXI = '9223372036854775807'
local function fits(bal, amt) return not lt(MAXI, add(bal, amt)) end
`

var (
	mintScript = redis.NewScript(decimals + `
local bal = redis.call('HGET', KEYS[1], ARGV[1]) or '0'
if not fits(bal, ARGV[2]) then return redis.error_reply('balance overflow') end
redis.call('HINCRBY', KEYS[1], ARGV[1], ARGV[2])
return 1
`)

	transferScript = redis.NewScript(decimals + `
local amt = ARGV[3]
local bal = redis.call('HGET', KEYS[1], ARGV[1]) or '0'
if lt(bal, amt) then return redis.error_reply('insufficient balance') end
if ARGV[1] == ARGV[2] then return 1 end
local dst = redis.call('HGET', KEYS[1], ARGV[2]) or '0'
if not fits(dst, amt) then return redis.error_reply('balance overflow') end
redis.call('HINCRBY', KEYS[1], ARGV[1], '-' .. amt)
redis.call('HINCRBY', KEYS[1], ARGV[2], amt)
return 1
`)

	transferFromScript = redis.NewScript(decimals + `
local amt = ARGV[4]
local allowKey = ARGV[2] .. '|' .. ARGV[1]
local allowed = redis.call('HGET', KEYS[2], allowKey) or '0'
if lt(allowed, amt) then return redis.error_reply('insufficient allowance') end
local bal = redis.call('HGET', KEYS[1], ARGV[2]) or '0'
if lt(bal, amt) then return redis.error_reply('insufficient balance') end
if ARGV[2] ~= ARGV[3] then
  local dst = redis.call('HGET', KEYS[1], ARGV[3]) or '0'
  if not fits(dst, amt) then return redis.error_reply('balance overflow') end
end
redis.call('HINCRBY', KEYS[2], allowKey, '-' .. amt)
if ARGV[2] ~= ARGV[3] then
  redis.call('HINCRBY', KEYS[1], ARGV[2], '-' .. amt)
  redis.call('HINCRBY', KEYS[1], ARGV[3], amt)
end
return 1
`)
)

type Redis struct {
	rdb        *redis.Client
	balances   string
	allowances string
}

var (
	_ asset.Ledger = (*Redis)(nil)
	_ asset.Minter = (*Redis)(nil)
)

// NewRedis keeps the ledger's hashes under the given asset symbol, e.g. "usdc".
func NewRedis(rdb *redis.Client, symbol string) *Redis {
	return &Redis{
		rdb:        rdb,
		balances:   cache.Key("ledger", symbol, "balances"),
		allowances: cache.Key("ledger", symbol, "allowances"),
	}
}

func allowanceField(owner, spender string) string { return spender + "|" + owner }

func checkAmount(amount uint64) error {
	if amount > math.MaxInt64 {
		return asset.ErrInvalidAmount
	}
	return nil
}

func (l *Redis) Mint(ctx context.Context, to string, amount uint64) error {
	if to == "" {
		return asset.ErrInvalidAccount
	}
	if err := checkAmount(amount); err != nil {
		return err
	}
	err := mintScript.Run(ctx, l.rdb, []string{l.balances}, to, strconv.FormatUint(amount, 10)).Err()
	return mapScriptErr(err)
}

func (l *Redis) Transfer(ctx context.Context, from, to string, amount uint64) error {
	if from == "" || to == "" {
		return asset.ErrInvalidAccount
	}
	if err := checkAmount(amount); err != nil {
		return err
	}
	err := transferScript.Run(ctx, l.rdb, []string{l.balances}, from, to, strconv.FormatUint(amount, 10)).Err()
	return mapScriptErr(err)
}

func (l *Redis) TransferFrom(ctx context.Context, spender, from, to string, amount uint64) error {
	if spender == "" || from == "" || to == "" {
		return asset.ErrInvalidAccount
	}
	if err := checkAmount(amount); err != nil {
		return err
	}
	err := transferFromScript.Run(ctx, l.rdb, []string{l.balances, l.allowances},
		spender, from, to, strconv.FormatUint(amount, 10)).Err()
	return mapScriptErr(err)
}

func (l *Redis) BalanceOf(ctx context.Context, account string) (uint64, error) {
	return l.readUint(ctx, l.balances, account)
}

func (l *Redis) Approve(ctx context.Context, owner, spender string, amount uint64) error {
	if owner == "" || spender == "" {
		return asset.ErrInvalidAccount
	}
	if err := checkAmount(amount); err != nil {
		return err
	}
	return l.rdb.HSet(ctx, l.allowances, allowanceField(owner, spender), amount).Err()
}

func (l *Redis) Allowance(ctx context.Context, owner, spender string) (uint64, error) {
	return l.readUint(ctx, l.allowances, allowanceField(owner, spender))
}

func (l *Redis) readUint(ctx context.Context, key, field string) (uint64, error) {
	v, err := l.rdb.HGet(ctx, key, field).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(v, 10, 64)
}

func mapScriptErr(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "insufficient allowance"):
		return asset.ErrInsufficientAllowance
	case strings.Contains(msg, "insufficient balance"):
		return asset.ErrInsufficientFunds
	case strings.Contains(msg, "balance overflow"):
		return asset.ErrInvalidAmount
	}
	return err
}
