// Package sign holds the secp256k1 signing and recovery primitives used to
// produce and check mint authorizations.
//
//	signer, err := sign.NewEthereumSigner(privateKeyHex)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	sig, err := signer.Sign(digest.Bytes())
//	addr, err := sign.RecoverAddressFromHash(digest.Bytes(), sig)
//
// Sign never hashes its input; callers pass the final 32-byte digest.
package sign
