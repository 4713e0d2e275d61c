package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"dinehook/config"
	"dinehook/core"
	"dinehook/crypto"
	"dinehook/native/loyalty"
	"dinehook/native/membership"
	"dinehook/native/rewardtoken"
	"dinehook/observability/logging"
	"dinehook/rpc"
	"dinehook/storage"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("DINEHOOK_ENV"))
	logger := logging.Setup("dinehookd", env)

	cfg, err := config.Load(*configFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		logger.Error("Failed to open database", slog.String("path", cfg.DataDir), slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	nodeCfg := core.NodeConfig{BaseFeeBps: cfg.BaseFeeBps}
	if nodeCfg.MintAuthority, err = decodeAuthority(cfg.MintAuthority); err != nil {
		logger.Error("Invalid mint authority", slog.Any("error", err))
		os.Exit(1)
	}
	if nodeCfg.BadgeAuthority, err = decodeAuthority(cfg.BadgeAuthority); err != nil {
		logger.Error("Invalid badge authority", slog.Any("error", err))
		os.Exit(1)
	}

	node := core.NewNode(db, nodeCfg, logger)

	for _, admin := range cfg.AdminAddresses {
		addr, err := decodeAuthority(admin)
		if err != nil {
			logger.Error("Invalid admin address", slog.String("address", admin), slog.Any("error", err))
			os.Exit(1)
		}
		if err := node.GrantRole(loyalty.RoleLoyaltyAdmin, addr); err != nil {
			logger.Error("Failed to grant admin role", slog.Any("error", err))
			os.Exit(1)
		}
	}
	if err := node.GrantRole(rewardtoken.RoleMinter, nodeCfg.MintAuthority); err != nil {
		logger.Error("Failed to grant mint role", slog.Any("error", err))
		os.Exit(1)
	}
	if err := node.GrantRole(membership.RoleIssuer, nodeCfg.BadgeAuthority); err != nil {
		logger.Error("Failed to grant badge role", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("Starting dinehook settlement node",
		slog.String("network", cfg.NetworkName),
		slog.Uint64("baseFeeBps", uint64(cfg.BaseFeeBps)),
		slog.String("rpc", cfg.RPCAddress))

	server := rpc.NewServer(node)
	if err := server.Start(cfg.RPCAddress); err != nil {
		logger.Error("RPC server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func decodeAuthority(value string) ([20]byte, error) {
	var out [20]byte
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return out, nil
	}
	addr, err := crypto.DecodeAddress(trimmed)
	if err != nil {
		return out, err
	}
	copy(out[:], addr.Bytes())
	return out, nil
}
