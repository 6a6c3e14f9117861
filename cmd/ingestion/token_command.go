package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/amankumarsingh77/repair-video-stitcher/internal/middleware"
	"github.com/amankumarsingh77/repair-video-stitcher/pkg/utils"
	"github.com/spf13/cobra"
)

func newTokenCommand(ctx *commandContext) *cobra.Command {
	var subject string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an operator bearer token for the queue endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.Server.JwtSecretKey == "" {
				return errors.New("server.jwtSecretKey is not configured")
			}
			token, err := utils.GenerateJWTToken(subject, middleware.OperatorScope, cfg.Server.JwtSecretKey, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "operator", "Token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", utils.TokenExpireDuration, "Token lifetime")
	return cmd
}
