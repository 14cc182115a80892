package challenge

import (
	"strconv"
	"strings"

	z "github.com/Oudwins/zog"
	"github.com/ethereum/go-ethereum/common"

	"github.com/plebbitlabs/mintgate/types"
)

// DefaultChainTicker is assumed when the policy does not name a chain.
const DefaultChainTicker = "eth"

// defaultContracts maps a chain ticker to the canonical MintPass deployment
// on that chain. A policy option overrides these; a ticker with no entry and
// no override is a configuration error.
var defaultContracts = map[string]common.Address{
	"eth": common.HexToAddress("0x6B3B5eD7630C0a8cCb1fC45E5ca5B32Ca1E1071d"),
}

// optionsSchema validates the raw string options before conversion. The host
// runtime delivers every option as a string.
var optionsSchema = z.Struct(z.Shape{
	"chainTicker": z.String().Optional(),
	"contractAddress": z.String().Optional().TestFunc(
		validHexAddress, z.Message("contractAddress must be a 0x-prefixed hex address"),
	),
	"requiredTokenType": z.String().Optional().TestFunc(
		validUint16, z.Message("requiredTokenType must be a non-negative integer"),
	),
	"bindToFirstAuthor": z.String().Optional().TestFunc(
		validBool, z.Message("bindToFirstAuthor must be a boolean"),
	),
	"transferCooldownSeconds": z.String().Optional().TestFunc(
		validUint, z.Message("transferCooldownSeconds must be a non-negative integer"),
	),
	"error":  z.String().Optional(),
	"rpcUrl": z.String().Optional(),
})

func validHexAddress(value *string, _ z.Ctx) bool {
	return *value == "" || common.IsHexAddress(*value)
}

func validUint16(value *string, _ z.Ctx) bool {
	if *value == "" {
		return true
	}
	_, err := strconv.ParseUint(*value, 10, 16)
	return err == nil
}

func validUint(value *string, _ z.Ctx) bool {
	if *value == "" {
		return true
	}
	_, err := strconv.ParseUint(*value, 10, 63)
	return err == nil
}

func validBool(value *string, _ z.Ctx) bool {
	switch strings.ToLower(*value) {
	case "", "true", "false", "1", "0":
		return true
	}
	return false
}

// ParseOptions converts the host-supplied option strings into a PolicyConfig.
// Invalid or unsatisfiable options are configuration errors, raised to the
// host rather than folded into a policy failure.
func ParseOptions(opts map[string]string) (types.PolicyConfig, error) {
	data := make(map[string]any, len(opts))
	for k, v := range opts {
		data[k] = v
	}

	var raw struct {
		ChainTicker             string `json:"chainTicker"`
		ContractAddress         string `json:"contractAddress"`
		RequiredTokenType       string `json:"requiredTokenType"`
		BindToFirstAuthor       string `json:"bindToFirstAuthor"`
		TransferCooldownSeconds string `json:"transferCooldownSeconds"`
		Error                   string `json:"error"`
		RpcUrl                  string `json:"rpcUrl"`
	}
	if errs := optionsSchema.Parse(data, &raw); errs != nil {
		return types.PolicyConfig{}, types.NewConfigError("", formatIssues(errs))
	}

	cfg := types.PolicyConfig{
		ChainTicker:   raw.ChainTicker,
		ErrorTemplate: raw.Error,
		RPCOverride:   raw.RpcUrl,
	}
	if cfg.ChainTicker == "" {
		cfg.ChainTicker = DefaultChainTicker
	}

	if raw.ContractAddress != "" {
		cfg.ContractAddress = common.HexToAddress(raw.ContractAddress)
	} else if addr, ok := defaultContracts[cfg.ChainTicker]; ok {
		cfg.ContractAddress = addr
	} else {
		return types.PolicyConfig{}, types.NewConfigError("contractAddress",
			"no contract address configured and no default for chain "+cfg.ChainTicker)
	}

	if raw.RequiredTokenType != "" {
		v, _ := strconv.ParseUint(raw.RequiredTokenType, 10, 16)
		cfg.RequiredTokenType = uint16(v)
	}
	if raw.TransferCooldownSeconds != "" {
		v, _ := strconv.ParseUint(raw.TransferCooldownSeconds, 10, 63)
		cfg.CooldownSeconds = int64(v)
	}
	switch strings.ToLower(raw.BindToFirstAuthor) {
	case "true", "1":
		cfg.BindToFirstAuthor = true
	}

	return cfg, nil
}

func formatIssues(errs z.ZogIssueMap) string {
	var parts []string
	for field, issues := range errs {
		for _, issue := range issues {
			parts = append(parts, field+": "+issue.Message)
		}
	}
	return strings.Join(parts, "; ")
}
