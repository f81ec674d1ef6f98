package main

import (
	"fmt"
	"os"

	"fable/internal/pkg/password"
)

// 生成访问密钥的 bcrypt 哈希，用于配置 auth.access_key_hash
//
// 用法: go run scripts/hash_access_key.go <access-key>
func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: hash_access_key <access-key>")
		os.Exit(1)
	}

	hash, err := password.Hash(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash access key: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}
