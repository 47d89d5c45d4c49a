package buildinfo

// Version is stamped at build time via:
//
//	go build -ldflags "-X git.agora.community/agora/agora/src/buildinfo.Version=$(git rev-parse --short HEAD)"
var Version = "dev"
