package storage

import (
	"context"
	"fmt"
	"image"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// AzureScheme prefixes logo references stored in Azure Blob Storage:
// azblob://<container>/<blob path>.
const AzureScheme = "azblob"

// AzureLogoSource downloads logos from a storage account.
type AzureLogoSource struct {
	client *azblob.Client
}

// NewAzureLogoSource authenticates with a shared key.
func NewAzureLogoSource(accountName, accountKey string) (*AzureLogoSource, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("azure credential: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("azure client: %w", err)
	}

	return &AzureLogoSource{client: client}, nil
}

// ParseBlobRef splits azblob://container/path into its parts.
func ParseBlobRef(ref string) (container, blob string, err error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", "", fmt.Errorf("invalid blob reference: %w", err)
	}
	if u.Scheme != AzureScheme {
		return "", "", fmt.Errorf("invalid blob reference %q: scheme must be %s", ref, AzureScheme)
	}
	container = u.Host
	blob = strings.TrimPrefix(u.Path, "/")
	if container == "" || blob == "" {
		return "", "", fmt.Errorf("invalid blob reference %q: container and blob are required", ref)
	}
	return container, blob, nil
}

func (s *AzureLogoSource) Fetch(ctx context.Context, ref string) (image.Image, error) {
	container, blob, err := ParseBlobRef(ref)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.DownloadStream(ctx, container, blob, nil)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	body := resp.Body
	defer body.Close()

	return decodeImage(body)
}
