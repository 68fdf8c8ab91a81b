// Package studio turns prompts into published podcast episodes.
//
// An editing Session owns two prompt fields (audio script and thumbnail
// description), one EnhancementMachine per field for AI-assisted rewriting,
// one Orchestrator per modality that runs generate -> upload -> resolve, and
// a CommitGate that writes the episode once both assets are resolved.
//
// All state lives in memory for one user's session. Callers read it through
// Snapshot values and change it only through the methods on these types.
package studio
