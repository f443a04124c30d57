// Package eip712 binds mint authorizations to a deployment and verifies them.
//
// A DomainHasher fixes the (name, version, chain id, verifying contract)
// tuple and its separator. A Verifier rebuilds the Support(recipient, amount)
// digest from the values a caller asks for, recovers the secp256k1 signer and
// accepts only the registered authority. An Authorizer is the signing side.
package eip712
