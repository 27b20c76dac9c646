// Package storage retrieves off-chain documents referenced by the serving
// contract, such as model cards named in a service's additional info.
//
// # Supported Backends
//
// IPFS:
//   - Access via the Kubo HTTP RPC API ("cat")
//   - Default: https://ipfs.io:443
//   - CIDs are parsed with go-cid; raw-codec CIDs (bafkrei...) are re-hashed
//     and rejected on mismatch
//
// Lighthouse (Filecoin gateway):
//   - "filecoin://<cid>" URIs
//   - Default: https://gateway.lighthouse.storage/ipfs/
//
// Plain HTTP(S):
//   - "http://" and "https://" URLs are fetched as-is
//
// Any non-2xx gateway response is an error.
//
// # Usage
//
//	st, err := storage.NewStorage(cfg.IpfsURL, cfg.LighthouseURL, cfg.Timeouts.MetadataFetch)
//	if err != nil {
//		return err
//	}
//	var card model.ModelCard
//	if storage.IsResolvable(svc.AdditionalInfo) {
//		err = st.ReadJSON(ctx, svc.AdditionalInfo, &card)
//	}
package storage
