package codecpb

// Run `go generate ./...` (with protoc and the protoc-gen-go /
// protoc-gen-go-grpc plugins on PATH) to regenerate codec.pb.go and
// codec_grpc.pb.go from codec.proto, replacing the hand-authored versions
// checked in here (see codec.pb.go's header for why they're hand-authored
// for now).

//go:generate protoc --go_out=. --go_opt=paths=source_relative --go-grpc_out=. --go-grpc_opt=paths=source_relative codec.proto
