// Package pool は固定サイズのワーカープールを提供する
//
// # 責務
// - 固定数のワーカーゴルーチンの起動と停止
// - 単一のジョブキューを介したジョブの受け渡し
// - ジョブ実行中のpanicの隔離
//
// # 仕様
//   - ワーカー数は生成時に固定され、以後変化しない（1以上）
//   - 各ジョブはちょうど1つのワーカーによって1回だけ実行される
//   - ジョブ間の完了順序は保証しない
//   - Close はキューを閉じ、キューに残ったジョブと実行中のジョブが
//     すべて完了するまでブロックする（キャンセルではなく合流）
//   - panic したジョブはログに記録され、ワーカーは次のジョブへ進む
package pool
