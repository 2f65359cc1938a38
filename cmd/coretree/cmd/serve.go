package cmd

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/distlabel/coretree/internal/rpc"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve path W",
	Short: "Load a built index and serve Distance/BatchDistance over gRPC",
	Args:  cobra.ExactArgs(2),
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":7070", "gRPC listen address")
}

func runServe(cmd *cobra.Command, args []string) error {
	dir := args[0]
	width, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid W %q: %w", args[1], err)
	}

	engine, err := loadEngine(dir, width)
	if err != nil {
		return err
	}

	lis, err := net.Listen("tcp", serveAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", serveAddr, err)
	}

	grpcServer := grpc.NewServer()
	rpc.RegisterQueryServiceServer(grpcServer, rpc.NewServer(engine))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("shutting down query server...")
		grpcServer.GracefulStop()
	}()

	log.Info("serving queries for %s (W=%d) on %s", dir, width, serveAddr)
	return grpcServer.Serve(lis)
}
