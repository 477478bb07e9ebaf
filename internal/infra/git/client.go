package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	giturls "github.com/whilp/git-urls"
)

// Client は Git リポジトリの取得を提供する。
// 取得したワークツリーはローカルディレクトリとしてそのままインデックス対象にできる
type Client struct {
	cloneDir string
}

// NewClient は新しい Client を作成する
func NewClient(cloneDir string) *Client {
	return &Client{cloneDir: cloneDir}
}

// CloneOrOpen はリポジトリをクローン先ディレクトリに取得し、
// ワークツリーのパスを返す。既にクローン済みの場合は取得済みの
// ワークツリーをそのまま返す
func (c *Client) CloneOrOpen(ctx context.Context, url string) (string, error) {
	dir, err := c.localPath(url)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return "", fmt.Errorf("failed to create clone directory: %w", err)
	}

	_, err = git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:   url,
		Depth: 1,
	})
	if errors.Is(err, git.ErrRepositoryAlreadyExists) {
		return dir, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to clone repository: %w", err)
	}

	return dir, nil
}

// CollectionName はリポジトリURLからコレクション名を導出する。
// 例: git@github.com:acme/widget.git -> github_com_acme_widget
func (c *Client) CollectionName(url string) (string, error) {
	u, err := giturls.Parse(url)
	if err != nil {
		return "", fmt.Errorf("failed to parse git URL: %w", err)
	}

	hostname := u.Hostname()
	if hostname == "" {
		hostname = u.Host
	}
	if hostname == "" {
		// giturls.Parse は解釈できない文字列をローカルパスとして扱うため、
		// ホスト名の有無でリモートURLかどうかを判定する
		return "", fmt.Errorf("cannot derive collection name from URL: %s", url)
	}

	path := strings.TrimPrefix(u.Path, "/")
	path = strings.TrimSuffix(path, ".git")

	name := hostname + "/" + path
	replacer := strings.NewReplacer("/", "_", ".", "_", "-", "_", ":", "_")
	return replacer.Replace(name), nil
}

// localPath はURLからクローン先のローカルパスを導出する
func (c *Client) localPath(url string) (string, error) {
	u, err := giturls.Parse(url)
	if err != nil {
		return "", fmt.Errorf("failed to parse git URL: %w", err)
	}

	hostname := u.Hostname()
	if hostname == "" {
		hostname = u.Host
	}
	if hostname == "" {
		return "", fmt.Errorf("cannot derive clone path from URL: %s", url)
	}

	path := strings.TrimPrefix(u.Path, "/")
	path = strings.TrimSuffix(path, ".git")

	return filepath.Join(c.cloneDir, hostname, filepath.FromSlash(path)), nil
}
