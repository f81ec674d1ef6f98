package storagefactory

import (
	"context"
	"io"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"fable/internal/config"
)

func TestNewStorage(t *testing.T) {
	Convey("根据配置创建存储实例", t, func() {
		ctx := context.Background()

		Convey("local 配置完整时创建本地存储", func() {
			cfg := &config.StorageConfig{
				Type: "local",
				Local: &config.LocalConfig{
					BasePath:      t.TempDir(),
					BaseURL:       "http://localhost:8080/storage",
					PresignExpiry: 3600,
				},
			}

			store, err := NewStorage(ctx, cfg)
			So(err, ShouldBeNil)
			So(store, ShouldNotBeNil)
			So(store.GetStorageType(), ShouldEqual, "local")
		})

		Convey("缺少 local 配置时返回错误", func() {
			cfg := &config.StorageConfig{Type: "local"}

			store, err := NewStorage(ctx, cfg)
			So(err, ShouldNotBeNil)
			So(store, ShouldBeNil)
		})

		Convey("缺少 OSS 配置时返回错误", func() {
			cfg := &config.StorageConfig{Type: "oss"}

			store, err := NewStorage(ctx, cfg)
			So(err, ShouldNotBeNil)
			So(store, ShouldBeNil)
		})

		Convey("不支持的存储类型返回错误", func() {
			cfg := &config.StorageConfig{Type: "invalid"}

			store, err := NewStorage(ctx, cfg)
			So(err, ShouldNotBeNil)
			So(store, ShouldBeNil)
		})
	})
}

func TestLocalStorageOperations(t *testing.T) {
	Convey("本地存储读写", t, func() {
		ctx := context.Background()
		baseURL := "http://localhost:8080/storage"
		cfg := &config.StorageConfig{
			Type: "local",
			Local: &config.LocalConfig{
				BasePath:      t.TempDir(),
				BaseURL:       baseURL,
				PresignExpiry: 3600,
			},
		}

		store, err := NewStorage(ctx, cfg)
		So(err, ShouldBeNil)

		key := "videos/test.txt"
		content := "hello fable"

		Convey("上传后可以下载同样的内容", func() {
			url, err := store.Upload(ctx, key, strings.NewReader(content), "text/plain")
			So(err, ShouldBeNil)
			So(url, ShouldEqual, baseURL+"/"+key)

			exists, err := store.Exists(ctx, key)
			So(err, ShouldBeNil)
			So(exists, ShouldBeTrue)

			reader, err := store.Download(ctx, key)
			So(err, ShouldBeNil)
			defer reader.Close()

			data, err := io.ReadAll(reader)
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, content)
		})

		Convey("删除不存在的文件不报错", func() {
			So(store.Delete(ctx, "nonexistent/file.txt"), ShouldBeNil)
		})

		Convey("下载不存在的文件返回错误", func() {
			_, err := store.Download(ctx, "nonexistent/file.txt")
			So(err, ShouldNotBeNil)
		})
	})
}
