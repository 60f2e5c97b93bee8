// Package service is the session orchestrator. A LANService ties the
// registries, content provider, engine instances, discovery, and the
// session transports together into the operations a UI layer calls:
// create or join a room, start the game, submit actions, leave, clean
// up. Whether the device hosts or joined as a guest, the surface is the
// same; only the path behind SubmitAction differs.
//
// All engine access is serialized per room. Errors cross the wire as
// short stable codes and come back as the same typed sentinels on both
// sides.
package service
