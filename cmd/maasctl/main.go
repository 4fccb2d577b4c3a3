// cmd/maasctl/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"marketing-maas/internal/agent"
	grpc_api "marketing-maas/internal/api/grpc"
)

const usage = `usage:
  maasctl [-addr host:port] status
  maasctl [-addr host:port] send -to <recipient> -kind <kind> [-from <sender>] [-payload '{"k":"v"}']`

func main() {
	addr := flag.String("addr", "localhost:50051", "address of the dispatcher gRPC bridge")
	timeout := flag.Duration("timeout", 5*time.Second, "request timeout")
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	client, conn, err := grpc_api.Dial(*addr)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	switch flag.Arg(0) {
	case "status":
		st, err := client.Status(ctx)
		if err != nil {
			log.Fatalf("status: %v", err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(st)

	case "send":
		fs := flag.NewFlagSet("send", flag.ExitOnError)
		from := fs.String("from", grpc_api.DefaultSender, "sender identifier")
		to := fs.String("to", "", "recipient worker id")
		kind := fs.String("kind", "", "message kind")
		raw := fs.String("payload", "{}", "JSON object payload")
		_ = fs.Parse(flag.Args()[1:])

		var payload agent.Payload
		if err := json.Unmarshal([]byte(*raw), &payload); err != nil {
			log.Fatalf("payload must be a JSON object: %v", err)
		}
		if err := client.Send(ctx, *from, *to, *kind, payload); err != nil {
			log.Fatalf("send: %v", err)
		}
		fmt.Printf("queued %s for %s\n", *kind, *to)

	default:
		flag.Usage()
		os.Exit(2)
	}
}
